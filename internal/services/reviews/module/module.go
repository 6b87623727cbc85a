// Package module wires the reviews pipeline and exposes its ports
package module

import (
	"critiq/internal/modkit"
	"critiq/internal/modkit/httpkit"
	"critiq/internal/services/reviews/dedup"
	"critiq/internal/services/reviews/gate"
	rhttp "critiq/internal/services/reviews/http"
	"critiq/internal/services/reviews/repo"
	"critiq/internal/services/reviews/service"
)

// Module defines the reviews module
type Module struct {
	deps     modkit.Deps
	ports    Ports
	handlers *rhttp.Handlers
}

// New constructs the reviews module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// load defaults, then apply non-zero overrides
	opts := FromConfig(deps.Cfg)
	if overrides.RatePerHour != 0 {
		opts.RatePerHour = overrides.RatePerHour
	}
	if overrides.CacheTTL != 0 {
		opts.CacheTTL = overrides.CacheTTL
	}
	if overrides.CacheScope != "" {
		opts.CacheScope = overrides.CacheScope
	}
	if overrides.Queue != "" {
		opts.Queue = overrides.Queue
	}
	if overrides.Concurrency != 0 {
		opts.Concurrency = overrides.Concurrency
	}
	if overrides.DequeueWait != 0 {
		opts.DequeueWait = overrides.DequeueWait
	}
	if overrides.PollInterval != 0 {
		opts.PollInterval = overrides.PollInterval
	}
	if overrides.TrustProxy {
		opts.TrustProxy = true
	}

	binder := repo.NewPG()
	cache := dedup.New(deps.KV, opts.CacheTTL, opts.CacheScope)
	cfg := service.Config{
		QueueName:    opts.Queue,
		Concurrency:  opts.Concurrency,
		DequeueWait:  opts.DequeueWait,
		PollInterval: opts.PollInterval,
	}

	svc := service.New(deps.PG, binder, gate.New(deps.KV, opts.RatePerHour), cache, deps.Queue, cfg)
	streamer := service.NewStreamer(deps.PG, binder, deps.Bus, cfg)

	an := overrides.Analyzer
	if an == nil {
		an = analyzerFromConfig(deps.Cfg)
	}
	lc := service.NewLifecycle(deps.PG, binder, cache, deps.Bus)
	worker := service.NewWorker(deps.PG, binder, deps.Queue, lc, an, cfg)

	m := &Module{deps: deps}
	m.handlers = rhttp.NewHandlers(svc, streamer, opts.TrustProxy)
	m.ports = Ports{
		Service: svc,
		Stream:  streamer,
		Worker:  worker,
	}
	return m
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "reviews" }

// Prefix returns the module mount prefix
func (m *Module) Prefix() string { return "/reviews" }

// MountRoutes mounts the reviews endpoints under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	modkit.MountUnder(r, m.Prefix(), nil, m.handlers.Register)
}
