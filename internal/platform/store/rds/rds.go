// Package rds provides a Redis client used for counters, the dedup cache,
// the status bus, and the job queue. One connection serves all four; they
// are different key namespaces on the same instance.
package rds

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures redis connectivity
type Config struct {
	Addr   string
	DB     int
	Prefix string
}

// RDS is a thin wrapper over go-redis with key prefixing
type RDS struct {
	C      *redis.Client
	prefix string
}

// Open creates a new RDS client with the given config
func Open(_ context.Context, cfg Config) (*RDS, error) {
	if cfg.Addr == "" {
		return nil, errors.New("rds: empty addr")
	}
	c := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	return &RDS{C: c, prefix: cfg.Prefix}, nil
}

// Key returns the fully-qualified key for k under the configured prefix
func (r *RDS) Key(k string) string { return r.prefix + k }

// Ping verifies connectivity
func (r *RDS) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }

// Close releases the underlying connection pool
func (r *RDS) Close() error { return r.C.Close() }

// Get returns the value for key; ok=false when the key is absent
func (r *RDS) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.C.Get(ctx, r.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set writes key=val with a ttl; ttl <= 0 means no expiry
func (r *RDS) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.C.Set(ctx, r.Key(key), val, ttl).Err()
}

// Incr atomically increments key and returns the post-increment count
func (r *RDS) Incr(ctx context.Context, key string) (int64, error) {
	return r.C.Incr(ctx, r.Key(key)).Result()
}

// Expire sets a ttl on an existing key
func (r *RDS) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.C.Expire(ctx, r.Key(key), ttl).Err()
}

// Publish fires a payload at topic; subscribers that are not listening miss it
func (r *RDS) Publish(ctx context.Context, topic string, payload []byte) error {
	return r.C.Publish(ctx, r.Key(topic), payload).Err()
}

// Subscription adapts redis pubsub to a byte channel
type Subscription struct {
	ps     *redis.PubSub
	ch     chan []byte
	cancel context.CancelFunc
}

// C returns the event channel; closed when the subscription ends
func (s *Subscription) C() <-chan []byte { return s.ch }

// Close unsubscribes and releases the pubsub connection
// safe to call more than once
func (s *Subscription) Close() error {
	s.cancel()
	return s.ps.Close()
}

// Subscribe opens a subscription on topic. The returned subscription must be
// closed by the caller on every exit path
func (r *RDS) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	ps := r.C.Subscribe(ctx, r.Key(topic))
	// force the SUBSCRIBE round trip so a dead transport fails here,
	// not silently on the first missed message
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	fwdCtx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{ps: ps, ch: make(chan []byte, 16), cancel: cancel}

	go func() {
		defer close(sub.ch)
		src := ps.Channel()
		for {
			select {
			case <-fwdCtx.Done():
				return
			case m, ok := <-src:
				if !ok {
					return
				}
				select {
				case sub.ch <- []byte(m.Payload):
				case <-fwdCtx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}

// Enqueue pushes a payload onto the named list queue
func (r *RDS) Enqueue(ctx context.Context, name string, payload []byte) error {
	return r.C.LPush(ctx, r.Key("queue:"+name), payload).Err()
}

// Dequeue pops the oldest payload from the named list queue, blocking up to
// wait; ok=false means the wait elapsed with no job
func (r *RDS) Dequeue(ctx context.Context, name string, wait time.Duration) ([]byte, bool, error) {
	res, err := r.C.BRPop(ctx, wait, r.Key("queue:"+name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, false, errors.New("rds: unexpected BRPOP reply")
	}
	return []byte(res[1]), true, nil
}
