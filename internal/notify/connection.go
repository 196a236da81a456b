// Package notify implements the best-effort event notifier on RabbitMQ.
// Publishing never influences the outcome of the storage mutation that
// produced the event: failures are reported to the caller as plain errors
// and the write coordinator swallows them.
package notify

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const dialRetryDelay = 2 * time.Second

// Connection wraps a long-lived AMQP connection shared by all publishers.
type Connection struct {
	url  string
	conn *amqp.Connection
}

// Dial connects to the broker, retrying up to attempts times. The caller
// decides what a failed dial means; the service treats it as degraded
// startup, not a fatal error.
func Dial(url string, attempts int, logger zerolog.Logger) (*Connection, error) {
	if attempts < 1 {
		attempts = 1
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			logger.Info().Msg("connected to broker")
			return &Connection{url: url, conn: conn}, nil
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("broker dial failed")
		if i < attempts-1 {
			time.Sleep(dialRetryDelay)
		}
	}

	return nil, fmt.Errorf("dial broker after %d attempts: %w", attempts, err)
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
