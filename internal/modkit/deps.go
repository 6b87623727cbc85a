// Package modkit provides module wiring and core deps
package modkit

import (
	"critiq/internal/modkit/repokit"
	"critiq/internal/platform/config"
	"critiq/internal/platform/logger"
	"critiq/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	PG    repokit.TxRunner
	KV    store.KV
	Bus   store.Bus
	Queue store.Queue
}
