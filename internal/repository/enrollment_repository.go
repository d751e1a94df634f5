package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayto-digital/events-service/internal/domain"
)

// EnrollmentLedger owns the set of enrollment records. Create carries the
// serialized capacity/duplicate contract; the remaining methods are reads.
type EnrollmentLedger interface {
	// Create admits the person into the event, or fails with
	// ErrEventNotOpen, ErrCapacityExhausted or ErrAlreadyEnrolled. The
	// state recheck, capacity check and insert run in one transaction
	// holding a lock on the event row, so concurrent calls for the same
	// event are serialized.
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	Exists(ctx context.Context, eventID, personID string) (bool, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]domain.Enrollment, error)
}

type enrollmentLedger struct {
	pool *pgxpool.Pool
}

// NewEnrollmentLedger returns a Postgres-backed implementation.
func NewEnrollmentLedger(pool *pgxpool.Pool) EnrollmentLedger {
	return &enrollmentLedger{pool: pool}
}

func (r *enrollmentLedger) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const lockQuery = `SELECT state, capacity FROM events WHERE id=$1 FOR UPDATE`

	var state domain.EventState
	var capacity *int32
	if err := tx.QueryRow(ctx, lockQuery, enrollment.EventID).Scan(&state, &capacity); err != nil {
		return err
	}
	if !domain.IsEnrollmentAdmissible(state) {
		return ErrEventNotOpen
	}

	// Duplicate check precedes the capacity check so an already enrolled
	// person on a full event reports the duplicate, not exhaustion.
	const dupQuery = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE event_id=$1 AND person_id=$2)`

	var enrolledAlready bool
	if err := tx.QueryRow(ctx, dupQuery, enrollment.EventID, enrollment.PersonID).Scan(&enrolledAlready); err != nil {
		return err
	}
	if enrolledAlready {
		return ErrAlreadyEnrolled
	}

	if capacity != nil {
		const countQuery = `SELECT COUNT(*) FROM enrollments WHERE event_id=$1`

		var enrolled int64
		if err := tx.QueryRow(ctx, countQuery, enrollment.EventID).Scan(&enrolled); err != nil {
			return err
		}
		if enrolled >= int64(*capacity) {
			return ErrCapacityExhausted
		}
	}

	// The unique constraint on (event_id, person_id) is the backstop for
	// writers outside this transaction's lock, e.g. other service instances.
	const insertQuery = `
        INSERT INTO enrollments (event_id, person_id, enrolled_on)
        VALUES ($1,$2,$3)
        ON CONFLICT (event_id, person_id) DO NOTHING
        RETURNING created_at`

	err = tx.QueryRow(ctx, insertQuery,
		enrollment.EventID,
		enrollment.PersonID,
		enrollment.EnrolledOn,
	).Scan(&enrollment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyEnrolled
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *enrollmentLedger) Exists(ctx context.Context, eventID, personID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE event_id=$1 AND person_id=$2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, eventID, personID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *enrollmentLedger) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE event_id=$1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentLedger) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]domain.Enrollment, error) {
	const query = `
        SELECT event_id, person_id, enrolled_on, created_at
        FROM enrollments WHERE event_id=$1
        ORDER BY created_at
        LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := []domain.Enrollment{}
	for rows.Next() {
		var enrollment domain.Enrollment
		if err := rows.Scan(
			&enrollment.EventID,
			&enrollment.PersonID,
			&enrollment.EnrolledOn,
			&enrollment.CreatedAt,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}
