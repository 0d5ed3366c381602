package kafka_test

import (
	"context"
	"testing"

	"resort/config"
	"resort/infras/kafka"
	"resort/infras/otel/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_ToKafkaMessage(t *testing.T) {
	msg := kafka.Message{
		Key:   "booking-1",
		Event: kafka.EventBookingCreated,
		Value: map[string]any{"id": "booking-1", "amount": 11970},
	}

	kMsg, err := msg.ToKafkaMessage()
	require.NoError(t, err)

	assert.Equal(t, []byte("booking-1"), kMsg.Key)
	assert.JSONEq(t, `{"id":"booking-1","amount":11970}`, string(kMsg.Value))
	assert.False(t, kMsg.Time.IsZero())

	headers := map[string]string{}
	for _, header := range kMsg.Headers {
		headers[header.Key] = string(header.Value)
	}

	assert.Equal(t, map[string]string{
		kafka.HeaderEventType:   kafka.EventBookingCreated,
		kafka.HeaderContentType: "application/json",
	}, headers)
}

func TestMessage_ToKafkaMessage_WithoutEvent(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: "v"}

	kMsg, err := msg.ToKafkaMessage()
	require.NoError(t, err)

	require.Len(t, kMsg.Headers, 1)
	assert.Equal(t, kafka.HeaderContentType, kMsg.Headers[0].Key)
}

func TestMessage_ToKafkaMessage_Unmarshalable(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)
}

func TestClient_Disabled(t *testing.T) {
	cfg := &config.Config{}
	client := kafka.New(cfg, mocks.NewOtel())

	err := client.SendMessages(context.Background(), "booking-events", kafka.Message{Key: "k", Value: "v"})
	assert.NoError(t, err)
}

func TestClient_EnabledWithoutBrokersIsDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Enable = true

	err := kafka.New(cfg, mocks.NewOtel()).SendMessages(context.Background(), "booking-events", kafka.Message{Key: "k", Value: make(chan int)})
	assert.NoError(t, err)
}
