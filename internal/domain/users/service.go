// Package users implements the user record domain: the write coordinator
// that sequences validation, durable mutation, and best-effort event
// publication, plus the read path.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/maka4h/user-service/internal/domain/ids"
	"github.com/maka4h/user-service/internal/metrics"
)

const (
	// DefaultListLimit applies when the caller does not specify one.
	DefaultListLimit = 50

	// DefaultMaxListLimit caps list result sizes when no cap is configured.
	DefaultMaxListLimit = 100
)

// Service coordinates user record operations against the record store and
// the event notifier. Both handles are long-lived, shared across concurrent
// requests, and injected at construction; correctness under concurrency
// relies on the store's own constraint enforcement, not on service-side
// locking.
type Service struct {
	repo     Repository
	notifier Notifier
	validate *validator.Validate
	maxLimit int
	logger   zerolog.Logger
}

// NewService creates a new user service. maxLimit caps list page sizes;
// values below 1 fall back to DefaultMaxListLimit.
func NewService(repo Repository, notifier Notifier, maxLimit int, logger zerolog.Logger) *Service {
	if maxLimit < 1 {
		maxLimit = DefaultMaxListLimit
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		validate: validator.New(),
		maxLimit: maxLimit,
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// Create validates input, inserts the record, and attempts one user.created
// publish. The create has succeeded once the insert commits; a publish
// failure is observed in logs and counters only.
func (s *Service) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)

	if params.Name == "" {
		return nil, ValidationError{Field: "name", Message: "must not be empty"}
	}
	if err := s.validate.Var(params.Email, "required,email"); err != nil {
		return nil, ValidationError{Field: "email", Message: "must be a valid email address"}
	}

	// Fast-path duplicate check. Two concurrent creates can both pass it;
	// the store's unique index decides the race and Insert reports the
	// loser as ErrEmailTaken.
	if _, err := s.repo.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	user, err := s.repo.Insert(ctx, params)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.notify(ctx, newCreatedEvent(user))
	metrics.UsersCreated.Inc()

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user created")
	return user, nil
}

// Delete removes the record and attempts one user.deleted publish. A record
// that vanished between the lookup and the delete is reported as ErrNotFound,
// not as a store fault.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := ids.ValidateULID(id); err != nil {
		return ValidationError{Field: "id", Message: "must be a valid ULID"}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.notify(ctx, newDeletedEvent(user))

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// Get retrieves a single user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if err := ids.ValidateULID(id); err != nil {
		return nil, ValidationError{Field: "id", Message: "must be a valid ULID"}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	metrics.UsersQueried.Inc()
	return user, nil
}

// List returns a page of users. Skip and Limit are untrusted input: negative
// skip and out-of-range limit are rejected rather than clamped.
func (s *Service) List(ctx context.Context, params ListParams) ([]User, error) {
	if params.Skip < 0 {
		return nil, ValidationError{Field: "skip", Message: "must not be negative"}
	}
	if params.Limit < 1 || params.Limit > s.maxLimit {
		return nil, ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", s.maxLimit)}
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	metrics.UsersQueried.Inc()
	return result, nil
}

// ParseListParams parses skip/limit query values. Range enforcement happens
// in List so that direct service callers get the same policy.
func ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Limit: DefaultListLimit}

	if raw := strings.TrimSpace(values.Get("skip")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return params, ValidationError{Field: "skip", Message: "must be a number"}
		}
		params.Skip = parsed
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return params, ValidationError{Field: "limit", Message: "must be a number"}
		}
		params.Limit = parsed
	}

	return params, nil
}

// notify attempts a single best-effort publish. The mutation has already
// committed by the time notify runs; failures never propagate to the caller
// and are never retried.
func (s *Service) notify(ctx context.Context, event Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("event", string(event.Kind)).
			Str("user_id", event.UserID).
			Msg("event publish failed")
		metrics.EventsPublished.WithLabelValues(string(event.Kind), "error").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(string(event.Kind), "ok").Inc()
}
