package domain

import (
	"context"
	"time"
)

// ServicePort is the API-facing contract for submissions
type ServicePort interface {
	// Submit admits, dedupes, and either creates a completed submission
	// (cache hit) or enqueues work for a pending one
	Submit(ctx context.Context, in SubmitInput, clientIP string) (SubmitAccepted, error)

	// Get returns the full joined view for one submission id
	Get(ctx context.Context, id string) (ReviewOut, error)

	// List returns filtered, paginated submissions
	List(ctx context.Context, in ListInput) ([]ReviewOut, int, error)
}

// WatchOptions tunes one Watch call; zero values fall back to service defaults
type WatchOptions struct {
	// PollInterval overrides the fallback polling cadence
	PollInterval time.Duration
}

// StreamPort is the read path for live status observation
type StreamPort interface {
	// Watch emits the current status, then live updates, ending with exactly
	// one done (or error) event. The returned channel closes when the stream
	// terminates or ctx is canceled
	Watch(ctx context.Context, id string, opts WatchOptions) (<-chan StreamEvent, error)
}

// WorkerPort runs the job processing loop
type WorkerPort interface {
	Run(ctx context.Context) error
	// Process handles a single job by submission id; exported for tests and
	// one-shot invocation
	Process(ctx context.Context, submissionID string) error
}
