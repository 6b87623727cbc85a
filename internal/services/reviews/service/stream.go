package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"critiq/internal/modkit/repokit"
	perr "critiq/internal/platform/errors"
	"critiq/internal/platform/logger"
	"critiq/internal/platform/store"
	"critiq/internal/services/reviews/domain"
	"critiq/internal/services/reviews/repo"
)

// Stream event names and error tokens on the wire
const (
	EventStatus = "status"
	EventDone   = "done"
	EventError  = "error"

	errInvalidID = "invalid_id"
	errNotFound  = "not_found"
	errInternal  = "internal_error"
)

// Streamer implements StreamPort: current status first, then live updates,
// ending with exactly one done event. When pub/sub is unavailable it degrades
// to polling the submission row
type Streamer struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	bus    store.Bus
	cfg    Config
	log    logger.Logger
}

// NewStreamer constructs a Streamer; bus may be nil (polling only)
func NewStreamer(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Repo],
	bus store.Bus,
	cfg Config,
) *Streamer {
	if db == nil || binder == nil {
		panic("reviews.Streamer requires db and binder")
	}
	return &Streamer{
		db:     db,
		binder: binder,
		bus:    bus,
		cfg:    cfg.withDefaults(),
		log:    *logger.Named("reviews.stream"),
	}
}

// Watch starts observing one submission. The returned channel closes when the
// stream reaches a terminal event or ctx is canceled
func (s *Streamer) Watch(
	ctx context.Context, id string, opts domain.WatchOptions,
) (<-chan domain.StreamEvent, error) {
	interval := s.cfg.PollInterval
	if opts.PollInterval > 0 {
		interval = opts.PollInterval
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	if interval > time.Minute {
		interval = time.Minute
	}
	out := make(chan domain.StreamEvent, 8)
	go s.run(ctx, id, interval, out)
	return out, nil
}

func (s *Streamer) run(
	ctx context.Context, id string, interval time.Duration, out chan<- domain.StreamEvent,
) {
	defer close(out)

	if _, err := uuid.Parse(id); err != nil {
		s.send(ctx, out, domain.StreamEvent{Name: EventError, Data: errInvalidID})
		return
	}

	r := s.binder.Bind(s.db)
	sub, err := r.GetSubmission(ctx, id)
	if err != nil {
		s.send(ctx, out, domain.StreamEvent{Name: EventError, Data: errorToken(err)})
		return
	}

	if !s.send(ctx, out, domain.StreamEvent{Name: EventStatus, Data: string(sub.Status)}) {
		return
	}
	if sub.Status.Terminal() {
		s.sendDone(ctx, r, sub, out)
		return
	}

	if s.bus != nil {
		subn, err := s.bus.Subscribe(ctx, Topic(id))
		if err == nil {
			defer subn.Close()
			if s.live(ctx, r, id, subn, out) {
				return
			}
			// subscription dropped mid-stream; fall through to polling
		} else {
			s.log.Warn().Err(err).Str("submission_id", id).Msg("subscribe failed; polling")
		}
	}

	s.poll(ctx, r, id, interval, out)
}

// live forwards bus events until a terminal event or ctx cancel.
// Returns false when the subscription channel closes before terminating,
// signaling the caller to fall back to polling
func (s *Streamer) live(
	ctx context.Context,
	r repo.Repo,
	id string,
	subn store.Subscription,
	out chan<- domain.StreamEvent,
) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case payload, open := <-subn.C():
			if !open {
				return false
			}
			var ev domain.StatusEvent
			if err := json.Unmarshal(payload, &ev); err != nil || !ev.Status.Valid() {
				s.log.Warn().Str("submission_id", id).Msg("discarding malformed status event")
				continue
			}
			if !s.send(ctx, out, domain.StreamEvent{Name: EventStatus, Data: string(ev.Status)}) {
				return true
			}
			if ev.Status.Terminal() {
				// re-fetch so the done payload carries the persisted review
				sub, err := r.GetSubmission(ctx, id)
				if err != nil {
					s.send(ctx, out, domain.StreamEvent{Name: EventError, Data: errorToken(err)})
					return true
				}
				s.sendDone(ctx, r, sub, out)
				return true
			}
		}
	}
}

// poll re-reads the submission row until it turns terminal
func (s *Streamer) poll(
	ctx context.Context, r repo.Repo, id string, interval time.Duration, out chan<- domain.StreamEvent,
) {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			sub, err := r.GetSubmission(ctx, id)
			if err != nil {
				s.send(ctx, out, domain.StreamEvent{Name: EventError, Data: errorToken(err)})
				return
			}
			if !s.send(ctx, out, domain.StreamEvent{Name: EventStatus, Data: string(sub.Status)}) {
				return
			}
			if sub.Status.Terminal() {
				s.sendDone(ctx, r, sub, out)
				return
			}
		}
	}
}

func (s *Streamer) sendDone(
	ctx context.Context, r repo.Repo, sub domain.Submission, out chan<- domain.StreamEvent,
) {
	view := joinView(ctx, r, sub)
	payload := domain.DonePayload{Status: sub.Status, Error: sub.Error}
	if view.Score != nil {
		payload.Review = &view
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.send(ctx, out, domain.StreamEvent{Name: EventError, Data: errInternal})
		return
	}
	s.send(ctx, out, domain.StreamEvent{Name: EventDone, Data: string(raw)})
}

// send delivers ev unless ctx is canceled; false means the watcher is gone
func (s *Streamer) send(ctx context.Context, out chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func errorToken(err error) string {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return errNotFound
	}
	return errInternal
}
