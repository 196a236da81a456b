package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maka4h/user-service/internal/api/handlers"
	"github.com/maka4h/user-service/internal/config"
	"github.com/maka4h/user-service/internal/domain/ids"
	"github.com/maka4h/user-service/internal/domain/users"
)

type routerRepo struct {
	byID  map[string]users.User
	order []string
}

func newRouterRepo() *routerRepo {
	return &routerRepo{byID: make(map[string]users.User)}
}

func (r *routerRepo) Insert(_ context.Context, params users.CreateUserParams) (*users.User, error) {
	for _, u := range r.byID {
		if u.Email == params.Email {
			return nil, users.ErrEmailTaken
		}
	}
	user := users.User{ID: ids.NewULID(), Name: params.Name, Email: params.Email, CreatedAt: time.Now().UTC()}
	r.byID[user.ID] = user
	r.order = append(r.order, user.ID)
	return &user, nil
}

func (r *routerRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (r *routerRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *routerRepo) List(_ context.Context, params users.ListParams) ([]users.User, error) {
	if params.Skip >= len(r.order) {
		return nil, nil
	}
	end := params.Skip + params.Limit
	if end > len(r.order) {
		end = len(r.order)
	}
	out := make([]users.User, 0, end-params.Skip)
	for _, id := range r.order[params.Skip:end] {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *routerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return users.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type routerNotifier struct{}

func (routerNotifier) Publish(context.Context, users.Event) error { return nil }
func (routerNotifier) Connected() bool                            { return false }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		Environment: "test",
		API:         config.APIConfig{MaxPageSize: 100},
		// PerMinute 0 disables rate limiting in tests.
		RateLimit: config.RateLimitConfig{PerMinute: 0},
	}
	service := users.NewService(newRouterRepo(), routerNotifier{}, cfg.API.MaxPageSize, zerolog.Nop())
	health := handlers.NewHealthChecker(nil, routerNotifier{}, "test")
	return NewRouter(cfg, zerolog.Nop(), service, health)
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// Create, re-create, fetch, delete, fetch: the full record lifecycle through
// the real handler tree and middleware chain.
func TestRouterUserLifecycle(t *testing.T) {
	router := newTestRouter(t)
	const payload = `{"name":"Ada Lovelace","email":"ada@example.com"}`

	rec := do(router, http.MethodPost, "/api/v1/users", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created users.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = do(router, http.MethodPost, "/api/v1/users", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code, "same email again is rejected")

	rec = do(router, http.MethodGet, "/api/v1/users/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page []users.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)

	rec = do(router, http.MethodDelete, "/api/v1/users/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/users/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodPut, "/api/v1/users", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, POST", rec.Header().Get("Allow"))

	rec = do(router, http.MethodPatch, "/api/v1/users/"+ids.NewULID(), "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "DELETE, GET", rec.Header().Get("Allow"))
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/unknown", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterCorrelationID(t *testing.T) {
	router := newTestRouter(t)

	t.Run("generated when absent", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/healthz", "")
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("caller value echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "test-correlation-id")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, "test-correlation-id", rec.Header().Get("X-Request-ID"))
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "userservice_")
}
