// Package gate is the fixed-window admission limiter in front of submission
package gate

import (
	"context"
	"fmt"
	"time"

	perr "critiq/internal/platform/errors"
	"critiq/internal/platform/logger"
	"critiq/internal/platform/store"
)

// Window is the fixed admission window length
const Window = time.Hour

// Gate counts submissions per client address in hour buckets
type Gate struct {
	kv    store.KV
	limit int64
	now   func() time.Time
}

// New constructs a Gate with the given per-window limit
func New(kv store.KV, limit int) *Gate {
	if kv == nil {
		panic("gate requires a non nil KV")
	}
	if limit <= 0 {
		limit = 60
	}
	return &Gate{kv: kv, limit: int64(limit), now: time.Now}
}

// WithClock overrides the time source, for tests
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Check admits or rejects one request from addr.
//
// The counter is incremented before the limit comparison and never rolled
// back: rejected requests still count, so the limit is a hard ceiling for
// the window rather than a sliding quota. The bucket TTL is set exactly
// once, on the call that creates the counter, to bound storage growth.
func (g *Gate) Check(ctx context.Context, addr string) error {
	bucket := g.now().Unix() / int64(Window/time.Second)
	key := fmt.Sprintf("ratelimit:%s:%d", addr, bucket)

	cnt, err := g.kv.Incr(ctx, key)
	if err != nil {
		// counter store down: fail open, admission is a guard not a ledger
		logger.Named("gate").Error().Err(err).Str("addr", addr).Msg("rate counter unavailable; admitting")
		return nil
	}
	if cnt == 1 {
		if err := g.kv.Expire(ctx, key, Window); err != nil {
			logger.Named("gate").Error().Err(err).Str("key", key).Msg("failed to set window ttl")
		}
	}
	if cnt > g.limit {
		logger.Named("gate").Warn().Str("addr", addr).Int64("count", cnt).Int64("limit", g.limit).
			Msg("rate limit exceeded")
		return perr.RateLimitedf("rate limit exceeded (%d reviews/hour)", g.limit)
	}
	return nil
}
