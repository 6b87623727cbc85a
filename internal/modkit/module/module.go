// Package module defines what a composable service module looks like
package module

import (
	phttp "critiq/internal/platform/net/http"
)

// Module is anything that can mount its routes and expose typed ports.
// Kept minimal so modules only couple through ports
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
