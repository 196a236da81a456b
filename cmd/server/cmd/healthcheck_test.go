package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func healthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func runHealthcheckAgainst(t *testing.T, url string) error {
	t.Helper()
	prev := healthcheckURL
	healthcheckURL = url
	t.Cleanup(func() { healthcheckURL = prev })
	return runHealthcheck(healthcheckCmd, nil)
}

func TestHealthcheckCommand(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := healthServer(t, http.StatusOK, `{"status":"healthy"}`)
		require.NoError(t, runHealthcheckAgainst(t, server.URL+"/health"))
	})

	t.Run("degraded still passes", func(t *testing.T) {
		// Broker-down degradation keeps the container alive.
		server := healthServer(t, http.StatusOK, `{"status":"degraded"}`)
		require.NoError(t, runHealthcheckAgainst(t, server.URL+"/health"))
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := healthServer(t, http.StatusServiceUnavailable, `{"status":"unhealthy"}`)
		require.Error(t, runHealthcheckAgainst(t, server.URL+"/health"))
	})

	t.Run("unreachable", func(t *testing.T) {
		require.Error(t, runHealthcheckAgainst(t, "http://127.0.0.1:1/health"))
	})
}
