// Package poller consumes order-placed events and drops the carts they were placed from,
// including carts held by other replicas.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// SessionClearer is the part of the session registry the poller needs.
type SessionClearer interface {
	ClearSession(ctx context.Context, sessionID, cartID string) error
}

// MessageReader is the part of *kafka.Reader the poller uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Poller struct {
	sessions SessionClearer
	reader   MessageReader
	log      zerolog.Logger
}

func NewPoller(sessions SessionClearer, log zerolog.Logger, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    order.OrderPlacedTopic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return NewPollerWithReader(sessions, reader, log)
}

func NewPollerWithReader(sessions SessionClearer, reader MessageReader, log zerolog.Logger) *Poller {
	return &Poller{
		sessions: sessions,
		reader:   reader,
		log:      log,
	}
}

// Run reads until ctx is cancelled or the reader is closed.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			p.log.Error().Err(err).Msg("error reading message")
			continue
		}
		if err := p.handleMessage(ctx, m); err != nil {
			p.log.Error().Err(err).Int64("offset", m.Offset).Msg("failed to handle order placed event")
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Error().Err(err).Msg("error closing reader")
	}
}

// handleMessage skips malformed events; redelivering them would not help.
func (p *Poller) handleMessage(ctx context.Context, m kafka.Message) error {
	var event order.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("error parsing message: %w", err)
	}
	if event.SessionID == "" {
		return errors.New("missing session_id")
	}

	if err := p.sessions.ClearSession(ctx, event.SessionID, event.CartID); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", event.SessionID, err)
	}

	p.log.Debug().
		Str("order_id", event.OrderID).
		Str("session_id", event.SessionID).
		Msg("cart cleared for placed order")
	return nil
}
