package service

import (
	"context"
	"encoding/json"
	"time"

	"critiq/internal/modkit/repokit"
	"critiq/internal/platform/logger"
	"critiq/internal/platform/store"
	"critiq/internal/services/reviews/dedup"
	"critiq/internal/services/reviews/domain"
	"critiq/internal/services/reviews/repo"
)

// Topic names the pub/sub channel carrying one submission's status events
func Topic(submissionID string) string {
	return "submission:" + submissionID + ":status"
}

// Lifecycle persists status transitions and announces them on the bus.
// The submission row is the source of truth; bus publishes are best effort
// and never fail a transition
type Lifecycle struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	cache  *dedup.Cache
	bus    store.Bus
	log    logger.Logger
}

// NewLifecycle constructs a Lifecycle; bus may be nil (publishes are skipped)
func NewLifecycle(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Repo],
	cache *dedup.Cache,
	bus store.Bus,
) *Lifecycle {
	if db == nil || binder == nil {
		panic("reviews.Lifecycle requires db and binder")
	}
	return &Lifecycle{
		db:     db,
		binder: binder,
		cache:  cache,
		bus:    bus,
		log:    *logger.Named("reviews.lifecycle"),
	}
}

// MarkInProgress records the pending -> in_progress transition
func (l *Lifecycle) MarkInProgress(ctx context.Context, id string) error {
	if err := l.binder.Bind(l.db).SetInProgress(ctx, id); err != nil {
		return err
	}
	l.publish(ctx, id, domain.StatusEvent{Status: domain.StatusInProgress})
	l.log.Info().
		Str("submission_id", id).
		Str("transition", "pending->in_progress").
		Msg("status transition")
	return nil
}

// Complete persists the review, flips the submission to completed, caches the
// fingerprint for future dedup, and announces the terminal status
func (l *Lifecycle) Complete(
	ctx context.Context, sub domain.Submission, rev domain.Review, started time.Time,
) error {
	// review row and status flip land together or not at all
	err := repokit.WithTx(ctx, l.db, func(q repokit.Queryer) error {
		r := l.binder.Bind(q)
		if err := r.InsertReview(ctx, rev); err != nil {
			return err
		}
		return r.SetCompleted(ctx, sub.ID, rev.ID)
	})
	if err != nil {
		return err
	}

	// only successful analyses seed the cache; failures always re-run
	if l.cache != nil && sub.CodeHash != "" {
		if err := l.cache.Store(ctx, sub.CodeHash, rev.ID); err != nil {
			l.log.Warn().Err(err).Str("submission_id", sub.ID).Msg("dedup store failed")
		}
	}

	durationMs := time.Since(started).Milliseconds()
	l.publish(ctx, sub.ID, domain.StatusEvent{
		Status:     domain.StatusCompleted,
		ReviewID:   rev.ID,
		DurationMs: durationMs,
	})
	l.log.Info().
		Str("submission_id", sub.ID).
		Str("transition", "in_progress->completed").
		Str("review_id", rev.ID).
		Int64("duration_ms", durationMs).
		Msg("status transition")
	return nil
}

// Fail records the failure reason and announces the terminal status
func (l *Lifecycle) Fail(ctx context.Context, id, errMsg string, started time.Time) error {
	if err := l.binder.Bind(l.db).SetFailed(ctx, id, errMsg); err != nil {
		return err
	}
	l.publish(ctx, id, domain.StatusEvent{Status: domain.StatusFailed, Error: errMsg})
	l.log.Error().
		Str("submission_id", id).
		Str("transition", "in_progress->failed").
		Int64("duration_ms", time.Since(started).Milliseconds()).
		Str("error", errMsg).
		Msg("status transition")
	return nil
}

func (l *Lifecycle) publish(ctx context.Context, id string, ev domain.StatusEvent) {
	if l.bus == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		l.log.Warn().Err(err).Str("submission_id", id).Msg("encode status event")
		return
	}
	if err := l.bus.Publish(ctx, Topic(id), payload); err != nil {
		l.log.Warn().Err(err).Str("submission_id", id).Msg("publish status event")
	}
}
