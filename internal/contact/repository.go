package contact

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/metrics"

	"github.com/uptrace/bun"
)

// DB hands out the shared database handle.
type DB interface {
	Acquire(ctx context.Context) (*bun.DB, error)
}

type Repository interface {
	// Create inserts contact unless a message with the same email and
	// subject was submitted at or after since.
	Create(ctx context.Context, contact *Contact, since time.Time) error
	List(ctx context.Context) ([]Contact, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
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

func (r *repository) Create(ctx context.Context, contact *Contact, since time.Time) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	err = conn.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Serialize submissions sharing email and subject for the rest of
		// the transaction so the lookup below cannot miss a concurrent insert.
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?), hashtext(?))", contact.Email, contact.Subject); err != nil {
			return err
		}

		exists, err := tx.NewSelect().
			Model((*Contact)(nil)).
			Where("email = ?", contact.Email).
			Where("subject = ?", contact.Subject).
			Where("submitted_date >= ?", since).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSubmission
		}

		_, err = tx.NewInsert().Model(contact).Returning("*").Exec(ctx)
		return err
	})

	r.metrics.RecordQuery(ctx, "insert", "contacts", time.Since(start), ignoreDuplicate(err))

	return err
}

func (r *repository) List(ctx context.Context) ([]Contact, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var contacts []Contact
	err = conn.NewSelect().
		Model(&contacts).
		Order("submitted_date DESC").
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "contacts", time.Since(start), err)

	return contacts, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := conn.NewUpdate().
		Model((*Contact)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "contacts", time.Since(start), err)

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

func ignoreDuplicate(err error) error {
	if errors.Is(err, ErrDuplicateSubmission) {
		return nil
	}
	return err
}
