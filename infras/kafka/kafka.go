package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resort/config"
	"resort/infras/otel"
	"resort/shared/constant"
	"resort/shared/timezone"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"

	HeaderEventType   = "event_type"
	HeaderContentType = "content_type"

	batchTimeout = 10 * time.Millisecond
)

// Message is one JSON event. Key picks the partition, so events of one booking stay ordered.
type Message struct {
	Key   string
	Event string
	Value any
}

func (m *Message) ToKafkaMessage() (kafkaGo.Message, error) {
	payload, err := json.Marshal(m.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to encode %s event: %w", m.Event, err)
	}

	headers := []kafkaGo.Header{{Key: HeaderContentType, Value: []byte(constant.ContentTypeJSON)}}
	if m.Event != "" {
		headers = append(headers, kafkaGo.Header{Key: HeaderEventType, Value: []byte(m.Event)})
	}

	return kafkaGo.Message{
		Key:     []byte(m.Key),
		Value:   payload,
		Headers: headers,
		Time:    timezone.Now(),
	}, nil
}

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) (err error)
}

type kafkaClientImpl struct {
	otel   otel.Otel
	writer *kafkaGo.Writer
}

// New returns a producer sharing one writer across topics. When Kafka is disabled the
// client accepts and drops every message.
func New(cfg *config.Config, otel otel.Otel) Client {
	client := &kafkaClientImpl{otel: otel}

	if !cfg.Kafka.Enable || len(cfg.Kafka.Brokers) == 0 {
		log.Info().Msg("kafka disabled, booking events will not be published")

		return client
	}

	transport := &kafkaGo.Transport{ClientID: cfg.App.Name}
	if cfg.Kafka.SASL.Username != "" {
		transport.SASL = plain.Mechanism{Username: cfg.Kafka.SASL.Username, Password: cfg.Kafka.SASL.Password}
	}

	client.writer = &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(cfg.Kafka.Brokers...),
		Transport:              transport,
		Balancer:               &kafkaGo.Hash{},
		RequiredAcks:           kafkaGo.RequireOne,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("kafka producer ready")

	return client
}

func (k *kafkaClientImpl) SendMessages(ctx context.Context, topic string, messages ...Message) (err error) {
	ctx, scope := k.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".SendMessages")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{"topic": topic, "count": len(messages)})

	if k.writer == nil || len(messages) == 0 {
		return nil
	}

	batch := make([]kafkaGo.Message, len(messages))

	for i := range messages {
		if batch[i], err = messages[i].ToKafkaMessage(); err != nil {
			return err
		}

		batch[i].Topic = topic
	}

	if err = k.writer.WriteMessages(ctx, batch...); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to publish events")

		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	log.Debug().Str("topic", topic).Int("count", len(batch)).Msg("published events")

	return nil
}
