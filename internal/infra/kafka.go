package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attendance/internal/clock"
	"attendance/internal/event"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher forwards committed domain events to a Kafka topic.
// Writes are asynchronous; delivery failures are logged and never reach the caller.
type KafkaPublisher struct {
	w     *kafka.Writer
	topic string
	clock clock.Clock
}

type eventEnvelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// eventBalancer routes by message key, so every event of a job order lands on one partition.
func eventBalancer() kafka.Balancer { return &kafka.Hash{} }

func NewKafkaPublisher(brokers []string, topic string, clk clock.Clock) *KafkaPublisher {
	if clk == nil {
		clk = clock.System{}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               eventBalancer(),
		Async:                  true,
		AllowAutoTopicCreation: true,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Debug().Str("topic", topic).Msgf("kafka: "+msg, args...)
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error().Str("topic", topic).Msgf("kafka: "+msg, args...)
		}),
	}
	return &KafkaPublisher{w: w, topic: topic, clock: clk}
}

// Notify implements event.Observer.
func (p *KafkaPublisher) Notify(ctx context.Context, e event.Event) {
	msg, err := encodeEvent(e, p.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("event", string(e.EventName())).Msg("kafka: encode event")
		return
	}
	msg.Topic = p.topic
	if err := p.w.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		log.Error().Err(err).Str("event", string(e.EventName())).Msg("kafka: write event")
	}
}

// encodeEvent keys messages by job order; with eventBalancer that keeps one order's events in order.
func encodeEvent(e event.Event, at time.Time) (kafka.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	body, err := json.Marshal(eventEnvelope{Type: string(e.EventName()), OccurredAt: at, Payload: payload})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(eventKey(e)), Value: body}, nil
}

func eventKey(e event.Event) string {
	switch ev := e.(type) {
	case event.QuoteApproved:
		return fmt.Sprintf("job-order:%d", ev.JobOrderID)
	case event.QuoteRegenerated:
		return fmt.Sprintf("job-order:%d", ev.JobOrderID)
	case event.JobCreated:
		return fmt.Sprintf("job-order:%d", ev.JobOrderID)
	case event.JobCompleted:
		return fmt.Sprintf("job-order:%d", ev.JobOrderID)
	}
	return string(e.EventName())
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
