package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayto-digital/events-service/internal/domain"
)

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, states []domain.EventState, limit, offset int) ([]domain.Event, error)
	UpdateState(ctx context.Context, id string, state domain.EventState) (*domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, title, description, location, state, capacity, starts_at, ends_at, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, location, state, capacity, starts_at, ends_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.State,
		event.Capacity,
		event.StartsAt,
		event.EndsAt,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id=$1`

	var event domain.Event
	if err := scanEvent(r.pool.QueryRow(ctx, query, id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, states []domain.EventState, limit, offset int) ([]domain.Event, error) {
	const query = `
        SELECT ` + eventColumns + `
        FROM events
        WHERE cardinality($1::text[]) = 0 OR state = ANY($1::text[])
        ORDER BY starts_at
        LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}
	stateArgs := make([]string, 0, len(states))
	for _, s := range states {
		stateArgs = append(stateArgs, string(s))
	}
	rows, err := r.pool.Query(ctx, query, stateArgs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var event domain.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) UpdateState(ctx context.Context, id string, state domain.EventState) (*domain.Event, error) {
	const query = `
        UPDATE events SET state=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + eventColumns

	var event domain.Event
	if err := scanEvent(r.pool.QueryRow(ctx, query, state, id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func scanEvent(row pgx.Row, event *domain.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.State,
		&event.Capacity,
		&event.StartsAt,
		&event.EndsAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}
