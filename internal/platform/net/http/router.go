package http

import "net/http"

// Handler is the platform handler type used everywhere
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the routing surface modules mount against. It is deliberately
// narrow: the API reads and accepts submissions, nothing mutates in place
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)

	Use(mw ...func(http.Handler) http.Handler)
	Route(pattern string, fn func(Router))

	Mux() http.Handler
}
