// Package service implements the review pipeline operations
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"critiq/internal/core/fingerprint"
	"critiq/internal/modkit/repokit"
	perr "critiq/internal/platform/errors"
	"critiq/internal/platform/logger"
	"critiq/internal/platform/store"
	"critiq/internal/services/reviews/dedup"
	"critiq/internal/services/reviews/domain"
	"critiq/internal/services/reviews/gate"
	"critiq/internal/services/reviews/repo"
)

// Config controls pipeline behavior
type Config struct {
	// QueueName is the redis list jobs travel on
	QueueName string

	// Concurrency bounds in-flight jobs per worker process
	Concurrency int

	// DequeueWait bounds one blocking pop so shutdown stays responsive
	DequeueWait time.Duration

	// PollInterval is the stream fallback cadence when pub/sub is unavailable
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueName == "" {
		c.QueueName = "process_review"
	}
	if c.Concurrency < 1 {
		c.Concurrency = 4
	}
	if c.DequeueWait <= 0 {
		c.DequeueWait = time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	return c
}

// Svc wires the admission gate, dedup cache, and queue into ServicePort
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	gate   *gate.Gate
	cache  *dedup.Cache
	queue  store.Queue
	cfg    Config

	now   func() time.Time
	newID func() string
}

// New constructs the submission service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Repo],
	g *gate.Gate,
	cache *dedup.Cache,
	queue store.Queue,
	cfg Config,
) *Svc {
	if db == nil {
		panic("reviews.Svc requires a non nil TxRunner")
	}
	if binder == nil {
		panic("reviews.Svc requires a non nil Repo binder")
	}
	if g == nil || cache == nil {
		panic("reviews.Svc requires gate and dedup cache")
	}
	if queue == nil {
		panic("reviews.Svc requires a queue")
	}
	return &Svc{
		db:     db,
		binder: binder,
		gate:   g,
		cache:  cache,
		queue:  queue,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
		newID:  newUUID,
	}
}

func newUUID() string { return uuid.NewString() }

// Submit admits the request, fingerprints the snippet, and either short-circuits
// on a cached review or enqueues a job for a pending submission
func (s *Svc) Submit(
	ctx context.Context, in domain.SubmitInput, clientIP string,
) (domain.SubmitAccepted, error) {
	log := logger.C(ctx).With().Str("mod", "reviews").Logger()

	if err := s.gate.Check(ctx, clientIP); err != nil {
		return domain.SubmitAccepted{}, err
	}

	hash := fingerprint.Hash(in.Language, in.Code)
	now := s.now().UTC()

	sub := domain.Submission{
		ID:        s.newID(),
		Code:      in.Code,
		Language:  in.Language,
		Status:    domain.StatusPending,
		CodeHash:  hash,
		ClientIP:  clientIP,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// cache lookup failures degrade to a miss; the pipeline re-analyzes
	reviewID, hit, err := s.cache.Lookup(ctx, hash)
	if err != nil {
		log.Warn().Err(err).Msg("dedup lookup failed; treating as miss")
		hit = false
	}
	if hit {
		sub.Status = domain.StatusCompleted
		sub.ReviewID = &reviewID
	}

	if err := s.binder.Bind(s.db).InsertSubmission(ctx, sub); err != nil {
		return domain.SubmitAccepted{}, err
	}

	if !hit {
		if err := s.queue.Enqueue(ctx, s.cfg.QueueName, []byte(sub.ID)); err != nil {
			// the record stays pending; re-enqueue is an operator action
			log.Error().Err(err).Str("submission_id", sub.ID).Msg("enqueue failed")
			return domain.SubmitAccepted{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "queue submission")
		}
	}

	log.Info().
		Str("submission_id", sub.ID).
		Str("language", in.Language).
		Int("code_length", len(in.Code)).
		Str("code_hash", hash[:16]).
		Bool("cache_hit", hit).
		Str("ip", clientIP).
		Msg("submission created")

	return domain.SubmitAccepted{ID: sub.ID, Status: sub.Status}, nil
}

// Get returns the joined client view for one submission
func (s *Svc) Get(ctx context.Context, id string) (domain.ReviewOut, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ReviewOut{}, perr.InvalidArgf("malformed submission id")
	}
	r := s.binder.Bind(s.db)
	sub, err := r.GetSubmission(ctx, id)
	if err != nil {
		return domain.ReviewOut{}, err
	}
	return joinView(ctx, r, sub), nil
}

// List returns filtered, paginated joined views plus the unpaged total
func (s *Svc) List(ctx context.Context, in domain.ListInput) ([]domain.ReviewOut, int, error) {
	if in.Status != "" && !domain.Status(in.Status).Valid() {
		return nil, 0, perr.InvalidArgf("unknown status %q", in.Status)
	}
	subs, revs, total, err := s.binder.Bind(s.db).List(ctx, in)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.ReviewOut, 0, len(subs))
	for _, sub := range subs {
		view := renderView(sub)
		if sub.ReviewID != nil {
			if rev, ok := revs[*sub.ReviewID]; ok {
				attachReview(&view, rev)
			}
		}
		out = append(out, view)
	}
	return out, total, nil
}

// joinView renders sub and, when present, its review. A dangling review_id
// (row not yet visible) renders the submission alone
func joinView(ctx context.Context, r repo.Repo, sub domain.Submission) domain.ReviewOut {
	view := renderView(sub)
	if sub.ReviewID != nil {
		if rev, err := r.GetReview(ctx, *sub.ReviewID); err == nil {
			attachReview(&view, rev)
		}
	}
	return view
}

func renderView(sub domain.Submission) domain.ReviewOut {
	return domain.ReviewOut{
		ID:        sub.ID,
		Status:    sub.Status,
		Language:  sub.Language,
		CreatedAt: sub.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: sub.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Error:     sub.Error,
	}
}

func attachReview(view *domain.ReviewOut, rev domain.Review) {
	score := rev.Score
	view.Score = &score
	view.Issues = rev.Issues
	view.Security = rev.Security
	view.Performance = rev.Performance
	view.Suggestions = rev.Suggestions
}
