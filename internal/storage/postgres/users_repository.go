package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maka4h/user-service/internal/domain/ids"
	"github.com/maka4h/user-service/internal/domain/users"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

var _ users.Repository = (*UserRepository)(nil)

// UserRepository implements users.Repository on a shared pgx pool.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a user repository backed by pool.
func NewUserRepository(pool *pgxpool.Pool) (*UserRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("user repository: pool is nil")
	}
	return &UserRepository{pool: pool}, nil
}

const userColumns = `id, name, email, created_at, updated_at`

// Insert creates a user record. The id is minted here; created_at is
// assigned by the database. A unique-index violation on email maps to
// users.ErrEmailTaken — this, not any pre-check, is what decides concurrent
// creates with the same email.
func (r *UserRepository) Insert(ctx context.Context, params users.CreateUserParams) (*users.User, error) {
	id := ids.NewULID()

	const query = `
INSERT INTO users (id, name, email)
VALUES ($1, $2, $3)
RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, params.Name, params.Email))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByID returns the user with the given id, or users.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail returns the user with the given email, or users.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// List returns a page of users in insertion order. The ULID tiebreak keeps
// the ordering stable for records created in the same instant.
func (r *UserRepository) List(ctx context.Context, params users.ListParams) ([]users.User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at, id
OFFSET $1
LIMIT $2`

	rows, err := r.pool.Query(ctx, query, params.Skip, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	result := make([]users.User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return result, nil
}

// Delete removes the user with the given id. Zero rows affected means the
// record was already gone: users.ErrNotFound, not a fault.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	var createdAt, updatedAt pgtype.Timestamptz

	if err := row.Scan(&user.ID, &user.Name, &user.Email, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	user.CreatedAt = createdAt.Time
	if updatedAt.Valid {
		value := updatedAt.Time
		user.UpdatedAt = &value
	}
	return &user, nil
}
