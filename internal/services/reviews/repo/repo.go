// Package repo provides postgres access for submissions and reviews
package repo

import (
	"context"
	"strings"
	"time"

	perr "critiq/internal/platform/errors"
	"critiq/internal/modkit/repokit"
	"critiq/internal/services/reviews/domain"
)

// Repo defines the repository contract for the review pipeline
type Repo interface {
	InsertSubmission(ctx context.Context, sub domain.Submission) error
	GetSubmission(ctx context.Context, id string) (domain.Submission, error)

	// SetInProgress marks a submission in_progress; no status guard, the
	// worker checks terminality before calling and last write wins
	SetInProgress(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id, reviewID string) error
	SetFailed(ctx context.Context, id, errMsg string) error

	InsertReview(ctx context.Context, rev domain.Review) error
	GetReview(ctx context.Context, id string) (domain.Review, error)

	List(ctx context.Context, in domain.ListInput) ([]domain.Submission, map[string]domain.Review, int, error)
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// EnsureSchema creates the two tables when missing; both binaries run it at boot
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	const ddl = `
create table if not exists submissions (
	id uuid primary key,
	code text not null,
	language text not null,
	status text not null check (status in ('pending','in_progress','completed','failed')),
	code_hash char(64) not null,
	review_id uuid,
	error text,
	client_ip text not null default '',
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);
create index if not exists submissions_created_at_idx on submissions (created_at desc);
create table if not exists reviews (
	id uuid primary key,
	submission_id uuid not null,
	score int not null,
	issues jsonb not null default '[]',
	security jsonb not null default '[]',
	performance jsonb not null default '[]',
	suggestions jsonb not null default '[]',
	created_at timestamptz not null default now()
);
`
	_, err := q.Exec(ctx, ddl)
	return err
}

func (r *queries) InsertSubmission(ctx context.Context, sub domain.Submission) error {
	const sql = `
insert into submissions (id, code, language, status, code_hash, review_id, error, client_ip, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := r.q.Exec(ctx, sql,
		sub.ID, sub.Code, sub.Language, string(sub.Status), sub.CodeHash,
		sub.ReviewID, sub.Error, sub.ClientIP, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "insert submission")
	}
	return nil
}

func (r *queries) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	const sql = `
select id::text, code, language, status, code_hash, review_id::text, error, client_ip, created_at, updated_at
from submissions where id = $1
`
	var s domain.Submission
	var status string
	err := r.q.QueryRow(ctx, sql, id).Scan(
		&s.ID, &s.Code, &s.Language, &status, &s.CodeHash,
		&s.ReviewID, &s.Error, &s.ClientIP, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.Submission{}, perr.NotFoundf("submission %s", id)
		}
		return domain.Submission{}, perr.Wrap(err, perr.ErrorCodeDB, "get submission")
	}
	s.Status = domain.Status(status)
	return s, nil
}

func (r *queries) SetInProgress(ctx context.Context, id string) error {
	const sql = `update submissions set status = 'in_progress', updated_at = now() where id = $1`
	_, err := r.q.Exec(ctx, sql, id)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "set in_progress")
	}
	return nil
}

func (r *queries) SetCompleted(ctx context.Context, id, reviewID string) error {
	const sql = `
update submissions set status = 'completed', review_id = $2, error = null, updated_at = now()
where id = $1
`
	_, err := r.q.Exec(ctx, sql, id, reviewID)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "set completed")
	}
	return nil
}

func (r *queries) SetFailed(ctx context.Context, id, errMsg string) error {
	const sql = `
update submissions set status = 'failed', error = $2, updated_at = now()
where id = $1
`
	_, err := r.q.Exec(ctx, sql, id, errMsg)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "set failed")
	}
	return nil
}

func (r *queries) InsertReview(ctx context.Context, rev domain.Review) error {
	const sql = `
insert into reviews (id, submission_id, score, issues, security, performance, suggestions, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.q.Exec(ctx, sql,
		rev.ID, rev.SubmissionID, rev.Score,
		jsonList(rev.Issues), jsonList(rev.Security), jsonList(rev.Performance), jsonList(rev.Suggestions),
		rev.CreatedAt,
	)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "insert review")
	}
	return nil
}

func (r *queries) GetReview(ctx context.Context, id string) (domain.Review, error) {
	const sql = `
select id::text, submission_id::text, score, issues, security, performance, suggestions, created_at
from reviews where id = $1
`
	var rev domain.Review
	err := r.q.QueryRow(ctx, sql, id).Scan(
		&rev.ID, &rev.SubmissionID, &rev.Score,
		&rev.Issues, &rev.Security, &rev.Performance, &rev.Suggestions,
		&rev.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.Review{}, perr.NotFoundf("review %s", id)
		}
		return domain.Review{}, perr.Wrap(err, perr.ErrorCodeDB, "get review")
	}
	return rev, nil
}

// List returns a page of submissions plus the reviews they reference.
// Score filters implicitly restrict the listing to reviewed submissions
func (r *queries) List(
	ctx context.Context, in domain.ListInput,
) ([]domain.Submission, map[string]domain.Review, int, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	const where = `
where ($1 = '' or s.language = $1)
and ($2 = '' or s.status = $2)
and ($3 = 0 or rv.score >= $3)
and ($4 = 0 or rv.score <= $4)
and ($5 = '' or s.created_at >= $5::timestamptz)
and ($6 = '' or s.created_at <= $6::timestamptz)
`
	const countSQL = `
select count(*)
from submissions s left join reviews rv on rv.id = s.review_id
` + where

	var total int
	if err := r.q.QueryRow(ctx, countSQL,
		in.Language, in.Status, in.MinScore, in.MaxScore, in.StartDate, in.EndDate).
		Scan(&total); err != nil {
		return nil, nil, 0, perr.Wrap(err, perr.ErrorCodeDB, "count submissions")
	}

	const pageSQL = `
select s.id::text, s.language, s.status, s.review_id::text, s.error, s.created_at, s.updated_at,
rv.id::text, rv.submission_id::text, rv.score, rv.issues, rv.security, rv.performance, rv.suggestions, rv.created_at
from submissions s left join reviews rv on rv.id = s.review_id
` + where + `
order by s.created_at desc
limit $7 offset $8
`
	rows, err := r.q.Query(ctx, pageSQL,
		in.Language, in.Status, in.MinScore, in.MaxScore, in.StartDate, in.EndDate,
		size, (page-1)*size)
	if err != nil {
		return nil, nil, 0, perr.Wrap(err, perr.ErrorCodeDB, "list submissions")
	}
	defer rows.Close()

	var subs []domain.Submission
	revs := map[string]domain.Review{}
	for rows.Next() {
		var s domain.Submission
		var status string
		var revID, revSubID *string
		var score *int
		var issues, security, performance, suggestions []string
		var revCreated *time.Time
		if err := rows.Scan(
			&s.ID, &s.Language, &status, &s.ReviewID, &s.Error, &s.CreatedAt, &s.UpdatedAt,
			&revID, &revSubID, &score, &issues, &security, &performance, &suggestions, &revCreated,
		); err != nil {
			return nil, nil, 0, perr.Wrap(err, perr.ErrorCodeDB, "scan submission")
		}
		s.Status = domain.Status(status)
		subs = append(subs, s)
		if revID != nil && score != nil {
			rev := domain.Review{
				ID: *revID, Score: *score,
				Issues: issues, Security: security, Performance: performance, Suggestions: suggestions,
			}
			if revSubID != nil {
				rev.SubmissionID = *revSubID
			}
			if revCreated != nil {
				rev.CreatedAt = *revCreated
			}
			revs[*revID] = rev
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, 0, perr.Wrap(err, perr.ErrorCodeDB, "list submissions")
	}
	return subs, revs, total, nil
}

// jsonList keeps jsonb columns non-null for empty slices
func jsonList(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func isNoRows(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no rows")
}
