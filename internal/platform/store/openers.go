package store

import (
	"context"
	"fmt"
	"time"

	"critiq/internal/platform/store/pg"
	"critiq/internal/platform/store/rds"
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, nil)
	if err != nil {
		return nil, err
	}

	// ping with retry/backoff using the pool directly
	const (
		maxAttempts    = 20
		pingTimeout    = 3 * time.Second
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < maxAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return newPGAdapter(p, s), nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", maxAttempts, lastErr)
}

// openRDS opens redis and wraps it with the KV/Bus/Queue adapter
func openRDS(ctx context.Context, cfg Config, _ *Store) (*rdsAdapter, error) {
	r, err := rds.Open(ctx, rds.Config{
		Addr:   cfg.RDS.Addr,
		DB:     cfg.RDS.DB,
		Prefix: cfg.RDS.Prefix,
	})
	if err != nil {
		return nil, err
	}
	toCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(toCtx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &rdsAdapter{r: r}, nil
}
