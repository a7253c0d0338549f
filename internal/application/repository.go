package application

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const uniqueViolation = "23505"

type DB interface {
	Acquire(ctx context.Context) (*bun.DB, error)
}

type Repository interface {
	Exists(ctx context.Context, email, jobSlug string) (bool, error)
	Create(ctx context.Context, app *JobApplication) error
	List(ctx context.Context) ([]JobApplication, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	GetByResumeFilename(ctx context.Context, filename string) (*JobApplication, error)
}

type repository struct {
	db      DB
	metrics *metrics.DatabaseMetrics
}

func NewRepository(db DB, m *metrics.DatabaseMetrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Exists(ctx context.Context, email, jobSlug string) (bool, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return false, err
	}

	start := time.Now()
	exists, err := conn.NewSelect().
		Model((*JobApplication)(nil)).
		Where("email = ?", email).
		Where("job_slug = ?", jobSlug).
		Exists(ctx)

	r.metrics.RecordQuery(ctx, "select", "job_applications", time.Since(start), err)

	return exists, err
}

// Create inserts app. A concurrent insert for the same email and job slug
// surfaces as ErrDuplicateApplication through the unique index.
func (r *repository) Create(ctx context.Context, app *JobApplication) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = conn.NewInsert().Model(app).Returning("*").Exec(ctx)

	if isUniqueViolation(err) {
		r.metrics.RecordQuery(ctx, "insert", "job_applications", time.Since(start), nil)
		return ErrDuplicateApplication
	}
	r.metrics.RecordQuery(ctx, "insert", "job_applications", time.Since(start), err)

	return err
}

func (r *repository) List(ctx context.Context) ([]JobApplication, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var apps []JobApplication
	err = conn.NewSelect().
		Model(&apps).
		Order("applied_date DESC").
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "job_applications", time.Since(start), err)

	return apps, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := conn.NewUpdate().
		Model((*JobApplication)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "job_applications", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) GetByResumeFilename(ctx context.Context, filename string) (*JobApplication, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	app := new(JobApplication)
	err = conn.NewSelect().
		Model(app).
		Where("resume_filename = ?", filename).
		Limit(1).
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "job_applications", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResumeNotFound
		}
		return nil, err
	}
	return app, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}
