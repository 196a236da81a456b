// Package problem writes RFC 7807 problem+json error responses. Internal
// fault detail goes to the structured log; the response body carries it only
// in development and test environments.
package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem type URIs used across the API.
const (
	TypeValidation  = "https://user-service.dev/problems/validation-error"
	TypeNotFound    = "https://user-service.dev/problems/not-found"
	TypeConflict    = "https://user-service.dev/problems/conflict"
	TypeServerError = "https://user-service.dev/problems/server-error"
)

type Details struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Write renders a problem response for err. Server errors (5xx) log at
// error level, client errors at warn; the request-scoped logger comes from
// the context.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string) {
	p := Details{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	if err != nil {
		if env == "development" || env == "test" {
			p.Detail = err.Error()
		} else {
			p.Detail = http.StatusText(status)
		}
	}
	if r != nil {
		p.Instance = r.URL.Path
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	writeDetails(w, p)
}

func writeDetails(w http.ResponseWriter, p Details) {
	payload, err := json.Marshal(p)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}
