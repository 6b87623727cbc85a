package httpkit

import (
	"net/http"

	"critiq/internal/platform/net/http/bind"
)

// ParseJSON decodes and validates a request body for handlers that need
// request context beyond the body
func ParseJSON[T any](r *http.Request) (T, error) { return bind.ParseJSON[T](r) }
