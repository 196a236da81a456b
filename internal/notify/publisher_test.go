package notify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maka4h/user-service/internal/domain/users"
)

func TestDisconnectedPublisher(t *testing.T) {
	p := Disconnected("", zerolog.Nop())

	require.Equal(t, DefaultExchange, p.exchange)
	require.False(t, p.Connected())

	err := p.Publish(context.Background(), users.Event{
		Kind:      users.EventUserCreated,
		UserID:    "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Email:     "ada@example.com",
		Timestamp: time.Now().UTC(),
		Version:   users.SchemaVersion,
	})
	require.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, p.Close(), "closing a disconnected publisher is a no-op")
}

func TestNilPublisher(t *testing.T) {
	var p *Publisher

	require.False(t, p.Connected())
	require.ErrorIs(t, p.Publish(context.Background(), users.Event{}), ErrNotConnected)
	require.NoError(t, p.Close())
}

func TestDisconnectedKeepsExchange(t *testing.T) {
	p := Disconnected("custom.events", zerolog.Nop())
	require.Equal(t, "custom.events", p.exchange)
}
