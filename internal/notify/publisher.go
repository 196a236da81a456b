package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/maka4h/user-service/internal/domain/users"
	"github.com/maka4h/user-service/internal/requestid"
)

// DefaultExchange is the topic exchange domain events are published to.
// The routing key is the event kind (user.created, user.deleted).
const DefaultExchange = "user.events"

// publishTimeout bounds a single publish attempt so a stalled broker can
// never hold a request open.
const publishTimeout = 5 * time.Second

// ErrNotConnected is returned by Publish when the broker connection was
// never established or has been lost.
var ErrNotConnected = errors.New("broker not connected")

var _ users.Notifier = (*Publisher)(nil)

// Publisher sends domain events to a topic exchange. A disconnected
// Publisher is fully usable: Publish fails with ErrNotConnected and
// Connected reports false, which the health surface turns into a degraded
// (not unhealthy) status.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewPublisher opens a channel on conn and declares the topic exchange.
func NewPublisher(conn *Connection, exchange string, logger zerolog.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	channel, err := conn.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &Publisher{
		conn:     conn.conn,
		channel:  channel,
		exchange: exchange,
		logger:   logger.With().Str("component", "notify").Logger(),
	}, nil
}

// Disconnected returns a publisher with no broker connection. It lets the
// service start when the broker is unreachable: every publish attempt fails
// and is swallowed upstream, mutations proceed normally.
func Disconnected(exchange string, logger zerolog.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{
		exchange: exchange,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

// Publish sends one event with the event kind as routing key. Delivery is
// transient: events are fire-and-forget signals with no durability or retry.
func (p *Publisher) Publish(ctx context.Context, event users.Event) error {
	if p == nil || p.channel == nil {
		return ErrNotConnected
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		string(event.Kind),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: requestid.FromContext(ctx),
			DeliveryMode:  amqp.Transient,
			Timestamp:     event.Timestamp,
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Kind, err)
	}

	p.logger.Debug().
		Str("event", string(event.Kind)).
		Str("user_id", event.UserID).
		Msg("event published")
	return nil
}

// Connected reports whether the broker connection is currently open.
// Health reporting only; it never gates mutations.
func (p *Publisher) Connected() bool {
	return p != nil && p.conn != nil && !p.conn.IsClosed()
}

// Close closes the channel. The shared connection is owned and closed by
// the process entry point.
func (p *Publisher) Close() error {
	if p == nil || p.channel == nil {
		return nil
	}
	return p.channel.Close()
}
