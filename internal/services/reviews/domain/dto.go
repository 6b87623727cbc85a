package domain

// SubmitInput is the request body for creating a submission
type SubmitInput struct {
	Code     string `json:"code" validate:"required,min=1,max=100000" example:"def f():\n    pass"`
	Language string `json:"language" validate:"required,min=1,max=40" example:"python"`
}

// SubmitAccepted is returned from the submission entry point
type SubmitAccepted struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// ReviewOut is the full client-facing view of a submission joined to its review
type ReviewOut struct {
	ID          string   `json:"id"`
	Status      Status   `json:"status"`
	Language    string   `json:"language"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Score       *int     `json:"score,omitempty"`
	Issues      []string `json:"issues,omitempty"`
	Security    []string `json:"security,omitempty"`
	Performance []string `json:"performance,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Error       *string  `json:"error,omitempty"`
}

// ListInput filters and pages the submission listing.
// Score bounds are 1-10; zero means unset. StartDate/EndDate are RFC 3339
type ListInput struct {
	Language  string `json:"language,omitempty"`
	Status    string `json:"status,omitempty"`
	MinScore  int    `json:"min_score,omitempty"`
	MaxScore  int    `json:"max_score,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
}

// StreamEvent is one frame on the client-facing status stream
type StreamEvent struct {
	// Name is "status", "done", or "error"
	Name string
	// Data is the payload already rendered for the wire: a bare status
	// string for "status", a JSON object for "done", an error token for "error"
	Data string
}

// DonePayload is the terminal frame body on the status stream
type DonePayload struct {
	Status Status     `json:"status"`
	Review *ReviewOut `json:"review,omitempty"`
	Error  *string    `json:"error,omitempty"`
}
