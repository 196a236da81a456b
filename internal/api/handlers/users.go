package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maka4h/user-service/internal/api/problem"
	"github.com/maka4h/user-service/internal/domain/users"
)

type UsersHandler struct {
	Service *users.Service
	Env     string
}

func NewUsersHandler(service *users.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var params users.CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Service.Create(r.Context(), params)
	if err != nil {
		writeUserError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	params, err := users.ParseListParams(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		writeUserError(w, r, err, h.Env)
		return
	}
	if result == nil {
		// Encode an empty page as [] rather than null.
		result = []users.User{}
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	user, err := h.Service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeUserError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	if err := h.Service.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeUserError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeUserError maps domain errors to their stable status codes. Store
// faults surface as a generic server error; the wrapped detail stays in
// the log.
func writeUserError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var validationErr users.ValidationError
	switch {
	case errors.As(err, &validationErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)
	case errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeConflict, "Email already registered", err, env)
	case errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}
