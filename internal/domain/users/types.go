package users

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a user lookup fails.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when a create would violate email uniqueness.
	// The unique index in the store is the authoritative source of this error;
	// the service's pre-check only shortcuts the common case.
	ErrEmailTaken = errors.New("email is already taken")
)

// User is a persisted user record. UpdatedAt is nil until the record's first
// mutation; the store assigns both timestamps.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CreateUserParams contains parameters for creating a new user.
type CreateUserParams struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListParams bounds a list query. Skip counts records to pass over in the
// store's natural order; Limit bounds the result size.
type ListParams struct {
	Skip  int
	Limit int
}

// Repository is the durable record store contract. Insert enforces email
// uniqueness atomically and returns ErrEmailTaken on violation; lookups
// return ErrNotFound for absent records; Delete returns ErrNotFound when
// the id does not exist at delete time.
type Repository interface {
	Insert(ctx context.Context, params CreateUserParams) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, params ListParams) ([]User, error)
	Delete(ctx context.Context, id string) error
}

// ValidationError reports a caller-input defect for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
