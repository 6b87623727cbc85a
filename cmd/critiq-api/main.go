package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"critiq/internal/platform/config"
	"critiq/internal/platform/logger"
	phttp "critiq/internal/platform/net/http"
	"critiq/internal/platform/store"

	"critiq/internal/services/api"
	"critiq/internal/services/reviews/repo"
)

func main() {
	// optional .env for local development
	_ = godotenv.Load()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "critiq-api",
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

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(srv.Router(), api.Options{
		Config: root,
		Store:  st,
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
