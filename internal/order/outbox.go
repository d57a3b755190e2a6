package order

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  OrderPlacedTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

// OutboxPublisher moves queued order events to Kafka. An event is marked processed only
// after the write succeeded, so delivery is at least once.
type OutboxPublisher struct {
	store     OutboxStore
	writer    MessageWriter
	log       zerolog.Logger
	eventTick time.Duration
	batchSize int
}

func NewOutboxPublisher(store OutboxStore, writer MessageWriter, log zerolog.Logger) *OutboxPublisher {
	return &OutboxPublisher{
		store:     store,
		writer:    writer,
		log:       log,
		eventTick: time.Second,
		batchSize: 100,
	}
}

func (p *OutboxPublisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.eventTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.ProcessOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ProcessOnce publishes one batch and returns how many events were marked processed.
func (p *OutboxPublisher) ProcessOnce(ctx context.Context) int {
	events, err := p.store.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to fetch outbox events")
		return 0
	}

	done := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.log.Error().Err(err).Int64("event_id", event.ID).Msg("failed to publish outbox event")
			continue
		}
		if err := p.store.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.Error().Err(err).Int64("event_id", event.ID).Msg("failed to mark outbox event as processed")
			continue
		}
		done++
	}
	return done
}

func (p *OutboxPublisher) Close() error {
	return p.writer.Close()
}

func (p *OutboxPublisher) publish(ctx context.Context, event *OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
