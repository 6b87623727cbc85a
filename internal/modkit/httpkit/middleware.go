package httpkit

import (
	"net/http"

	"critiq/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// note: no Timeout here; the stream endpoint outlives any sane request deadline
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog,

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{MaxAge: 300}),
		middleware.Heartbeat("/api/health"),
		middleware.StripSlashes(),
	}
}

// MountAPI mounts fn under /api with the given middleware stack
func MountAPI(r Router, mws []func(http.Handler) http.Handler, fn func(Router)) {
	r.Route("/api", func(api Router) {
		for _, mw := range mws {
			api.Use(mw)
		}
		fn(api)
	})
}
