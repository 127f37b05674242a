package submission

import (
	"context"
	"time"

	"contact-service/internal/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Repository interface {
	Insert(ctx context.Context, sub *Submission) (*Submission, error)
	List(ctx context.Context) ([]Submission, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Submission, error)
	Delete(ctx context.Context, id string) error
	Probe(ctx context.Context) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

// Insert assigns the id and both timestamps, defaulting status to "new".
// Required fields are re-checked here as defense in depth; the service has
// already validated them.
func (r *repository) Insert(ctx context.Context, sub *Submission) (*Submission, error) {
	if sub.Name == "" || sub.Email == "" || sub.Message == "" {
		return nil, ErrMissingFields
	}

	sub.ID = uuid.NewString()
	if sub.Status == "" {
		sub.Status = StatusNew
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	sub.CreatedAt = now
	sub.UpdatedAt = now

	start := time.Now()
	_, err := r.db.NewInsert().Model(sub).Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "submissions", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return sub, nil
}

// List returns all submissions ordered most recent first. The ordering is
// done at the data source, never re-sorted by callers.
func (r *repository) List(ctx context.Context) ([]Submission, error) {
	start := time.Now()
	var subs []Submission
	err := r.db.NewSelect().
		Model(&subs).
		Order("created_at DESC").
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "submissions", time.Since(start), err)

	return subs, err
}

// UpdateStatus sets the status and refreshes updated_at. Setting the current
// status again is a no-op success.
func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (*Submission, error) {
	sub := new(Submission)
	now := time.Now().UTC().Truncate(time.Microsecond)

	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(sub).
		Set("status = ?", status).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "submissions", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	sub := &Submission{ID: id}

	start := time.Now()
	result, err := r.db.NewDelete().Model(sub).WherePK().Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "submissions", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// Probe issues a trivial count against the table to confirm the store is
// reachable. Used by readiness checks only.
func (r *repository) Probe(ctx context.Context) error {
	var count int

	start := time.Now()
	err := r.db.NewSelect().
		Model((*Submission)(nil)).
		ColumnExpr("count(*)").
		Scan(ctx, &count)

	r.metrics.RecordQuery(ctx, "select", "submissions", time.Since(start), err)

	return err
}
