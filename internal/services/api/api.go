// Package api assembles the HTTP surface of the service
package api

import (
	"critiq/internal/platform/config"
	phttp "critiq/internal/platform/net/http"
	"critiq/internal/platform/store"

	"critiq/internal/modkit"
	"critiq/internal/modkit/httpkit"
	"critiq/internal/modkit/module"

	reviewsmod "critiq/internal/services/reviews/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg:   opt.Config,
		PG:    opt.Store.PG,
		KV:    opt.Store.KV,
		Bus:   opt.Store.Bus,
		Queue: opt.Store.Queue,
	}

	mods := []module.Module{
		reviewsmod.New(deps, reviewsmod.Options{}),
	}

	httpkit.MountAPI(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
