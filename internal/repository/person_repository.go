package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayto-digital/events-service/internal/domain"
)

// PersonRepository defines persistence access for registered people.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) error
	Update(ctx context.Context, person *domain.Person) error
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	GetByIdentifier(ctx context.Context, identifier int64) (*domain.Person, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Person, error)
	GetByEmail(ctx context.Context, email string) (*domain.Person, error)
	List(ctx context.Context, limit, offset int) ([]domain.Person, error)
}

type personRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository returns a Postgres-backed implementation.
func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &personRepository{pool: pool}
}

const personColumns = `id, identifier, name, family_name, email, handle, credential_hash, phone, created_at, updated_at`

func (r *personRepository) Create(ctx context.Context, person *domain.Person) error {
	const query = `
        INSERT INTO people (identifier, name, family_name, email, handle, credential_hash, phone)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		person.Identifier,
		person.Name,
		person.FamilyName,
		person.Email,
		person.Handle,
		person.CredentialHash,
		person.Phone,
	).Scan(&person.ID, &person.CreatedAt, &person.UpdatedAt)
	return mapPersonConstraint(err)
}

func (r *personRepository) Update(ctx context.Context, person *domain.Person) error {
	const query = `
        UPDATE people SET name=$1, family_name=$2, email=$3, phone=$4, credential_hash=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		person.Name,
		person.FamilyName,
		person.Email,
		person.Phone,
		person.CredentialHash,
		person.ID,
	)
	if err != nil {
		return mapPersonConstraint(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *personRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	return r.fetchSingle(ctx, `SELECT `+personColumns+` FROM people WHERE id=$1`, id)
}

func (r *personRepository) GetByIdentifier(ctx context.Context, identifier int64) (*domain.Person, error) {
	return r.fetchSingle(ctx, `SELECT `+personColumns+` FROM people WHERE identifier=$1`, identifier)
}

func (r *personRepository) GetByHandle(ctx context.Context, handle string) (*domain.Person, error) {
	return r.fetchSingle(ctx, `SELECT `+personColumns+` FROM people WHERE handle=$1`, handle)
}

func (r *personRepository) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	return r.fetchSingle(ctx, `SELECT `+personColumns+` FROM people WHERE email=$1`, email)
}

func (r *personRepository) List(ctx context.Context, limit, offset int) ([]domain.Person, error) {
	const query = `SELECT ` + personColumns + ` FROM people ORDER BY family_name, name LIMIT $1 OFFSET $2`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := []domain.Person{}
	for rows.Next() {
		var person domain.Person
		if err := scanPerson(rows, &person); err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	return people, rows.Err()
}

func (r *personRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Person, error) {
	var person domain.Person
	if err := scanPerson(r.pool.QueryRow(ctx, query, arg), &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func scanPerson(row pgx.Row, person *domain.Person) error {
	return row.Scan(
		&person.ID,
		&person.Identifier,
		&person.Name,
		&person.FamilyName,
		&person.Email,
		&person.Handle,
		&person.CredentialHash,
		&person.Phone,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
}

// mapPersonConstraint translates unique-index violations into
// UniqueViolationError so services can name the conflicting attribute.
// The constraints are the cross-process backstop for registration races.
func mapPersonConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if attr, ok := personConstraintAttributes[pgErr.ConstraintName]; ok {
			return &UniqueViolationError{Attribute: attr}
		}
	}
	return err
}
