// Package domain holds types and contracts for the review pipeline
package domain

import "time"

// Status is the submission lifecycle state.
// Transitions are monotonic: pending -> in_progress -> {completed | failed},
// with a cache hit creating a submission directly in completed
type Status string

// Lifecycle states
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are permitted from s
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// Valid reports whether s is a known lifecycle state
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Submission is one client-initiated unit of work and its lifecycle record
type Submission struct {
	ID        string
	Code      string
	Language  string
	Status    Status
	CodeHash  string
	ReviewID  *string
	Error     *string
	ClientIP  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Review is the output of one analysis run, referenced by a Submission
type Review struct {
	ID           string
	SubmissionID string
	Score        int
	Issues       []string
	Security     []string
	Performance  []string
	Suggestions  []string
	CreatedAt    time.Time
}

// StatusEvent is the ephemeral message published on a submission's channel.
// Durability comes only from the submission record, never from the bus
type StatusEvent struct {
	Status     Status `json:"status"`
	ReviewID   string `json:"review_id,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}
