package modkit

import (
	"net/http"

	phttp "critiq/internal/platform/net/http"
)

// MountUnder mounts fn on r under prefix, applying mws in order before any route
func MountUnder(r phttp.Router, prefix string, mws []func(http.Handler) http.Handler, fn func(phttp.Router)) {
	r.Route(prefix, func(rr phttp.Router) {
		for _, mw := range mws {
			rr.Use(mw)
		}
		fn(rr)
	})
}
