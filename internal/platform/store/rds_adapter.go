package store

import (
	"context"
	"time"

	"critiq/internal/platform/store/rds"
)

// rdsAdapter wraps rds.RDS and implements the KV, Bus, and Queue seams
type rdsAdapter struct{ r *rds.RDS }

func (a *rdsAdapter) Ping(ctx context.Context) error { return a.r.Ping(ctx) }
func (a *rdsAdapter) Close() error                   { return a.r.Close() }

func (a *rdsAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	return a.r.Get(ctx, key)
}

func (a *rdsAdapter) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return a.r.Set(ctx, key, val, ttl)
}

func (a *rdsAdapter) Incr(ctx context.Context, key string) (int64, error) {
	return a.r.Incr(ctx, key)
}

func (a *rdsAdapter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return a.r.Expire(ctx, key, ttl)
}

func (a *rdsAdapter) Publish(ctx context.Context, topic string, payload []byte) error {
	return a.r.Publish(ctx, topic, payload)
}

func (a *rdsAdapter) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	sub, err := a.r.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (a *rdsAdapter) Enqueue(ctx context.Context, name string, payload []byte) error {
	return a.r.Enqueue(ctx, name, payload)
}

func (a *rdsAdapter) Dequeue(ctx context.Context, name string, wait time.Duration) ([]byte, bool, error) {
	return a.r.Dequeue(ctx, name, wait)
}
