package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"critiq/internal/modkit"
	"critiq/internal/modkit/module"
	"critiq/internal/platform/config"
	"critiq/internal/platform/logger"
	"critiq/internal/platform/store"

	reviewsmod "critiq/internal/services/reviews/module"
	"critiq/internal/services/reviews/repo"
)

func main() {
	_ = godotenv.Load()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "critiq-worker",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			RDS: store.RedisConfig{
				Enabled: true,
				Addr:    rdsCfg.MustString("ADDR"),
				DB:      rdsCfg.MayInt("DB", 0),
				Prefix:  rdsCfg.MayString("PREFIX", ""),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := repo.EnsureSchema(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("schema bootstrap failed")
	}

	deps := modkit.Deps{
		Cfg:   root,
		PG:    st.PG,
		KV:    st.KV,
		Bus:   st.Bus,
		Queue: st.Queue,
	}

	mod := reviewsmod.New(deps, reviewsmod.Options{})
	worker := module.MustPortsOf[reviewsmod.Ports](mod).Worker

	if err := worker.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("worker stopped")
	}
}
