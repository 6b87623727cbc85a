package service

import (
	"context"
	"sync"
	"time"

	"critiq/internal/adapters/analyze"
	"critiq/internal/modkit/repokit"
	perr "critiq/internal/platform/errors"
	"critiq/internal/platform/logger"
	"critiq/internal/platform/store"
	"critiq/internal/services/reviews/domain"
	"critiq/internal/services/reviews/repo"
)

// Worker drains the job queue and drives submissions to a terminal state
type Worker struct {
	db       repokit.TxRunner
	binder   repokit.Binder[repo.Repo]
	queue    store.Queue
	lc       *Lifecycle
	analyzer analyze.Analyzer
	cfg      Config
	log      logger.Logger

	now   func() time.Time
	newID func() string
}

// NewWorker constructs a Worker
func NewWorker(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Repo],
	queue store.Queue,
	lc *Lifecycle,
	analyzer analyze.Analyzer,
	cfg Config,
) *Worker {
	if db == nil || binder == nil {
		panic("reviews.Worker requires db and binder")
	}
	if queue == nil || lc == nil || analyzer == nil {
		panic("reviews.Worker requires queue, lifecycle, and analyzer")
	}
	w := &Worker{
		db:       db,
		binder:   binder,
		queue:    queue,
		lc:       lc,
		analyzer: analyzer,
		cfg:      cfg.withDefaults(),
		log:      *logger.Named("reviews.worker"),
	}
	w.now = time.Now
	w.newID = newUUID
	return w
}

// Run consumes jobs until ctx is canceled, bounding in-flight work by
// cfg.Concurrency. In-flight jobs are drained before returning
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().
		Str("queue", w.cfg.QueueName).
		Int("concurrency", w.cfg.Concurrency).
		Msg("worker started")

	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			w.log.Info().Msg("worker stopped")
			return nil
		default:
		}

		payload, ok, err := w.queue.Dequeue(ctx, w.cfg.QueueName, w.cfg.DequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("dequeue failed")
			select {
			case <-time.After(w.cfg.DequeueWait):
			case <-ctx.Done():
			}
			continue
		}
		if !ok {
			continue
		}

		// block for a slot even during shutdown: a job in hand is processed,
		// not dropped
		sem <- struct{}{}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := w.Process(context.WithoutCancel(ctx), id); err != nil {
				w.log.Error().Err(err).Str("submission_id", id).Msg("job failed")
			}
		}(string(payload))
	}
}

// Process drives one submission id to a terminal state. Unknown ids and
// already-terminal submissions are dropped quietly: duplicate delivery is
// expected under at-least-once handoff
func (w *Worker) Process(ctx context.Context, submissionID string) error {
	start := w.now()

	r := w.binder.Bind(w.db)
	sub, err := r.GetSubmission(ctx, submissionID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			w.log.Error().Str("submission_id", submissionID).Msg("submission not found")
			return nil
		}
		return err
	}
	if sub.Status.Terminal() {
		w.log.Debug().
			Str("submission_id", submissionID).
			Str("status", string(sub.Status)).
			Msg("duplicate job for terminal submission")
		return nil
	}

	if err := w.lc.MarkInProgress(ctx, submissionID); err != nil {
		return err
	}

	res, err := w.analyzer.Review(ctx, sub.Language, sub.Code)
	if err != nil {
		return w.lc.Fail(ctx, submissionID, perr.Root(err).Error(), start)
	}

	rev := domain.Review{
		ID:           w.newID(),
		SubmissionID: submissionID,
		Score:        res.Score,
		Issues:       res.Issues,
		Security:     res.Security,
		Performance:  res.Performance,
		Suggestions:  res.Suggestions,
		CreatedAt:    w.now().UTC(),
	}
	return w.lc.Complete(ctx, sub, rev, start)
}
