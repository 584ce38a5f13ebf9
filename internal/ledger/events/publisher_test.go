package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPublisher(t *testing.T) (*KafkaPublisher, *mocks.SyncProducer) {
	t.Helper()
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	return &KafkaPublisher{producer: producer, brokers: []string{"localhost:9092"}}, producer
}

func TestKafkaPublisher_PublishMovementRecorded(t *testing.T) {
	pub, producer := newMockPublisher(t)
	defer pub.Close()

	var sent []byte
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicStockMovements {
			return errors.New("wrong topic: " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "item_7" {
			return errors.New("wrong key: " + string(key))
		}
		sent, err = msg.Value.Encode()
		return err
	})

	err := pub.PublishMovementRecorded(context.Background(), MovementRecordedEvent{
		ItemID:      7,
		SKU:         "WIDGET-7",
		MovementID:  3,
		Type:        "IN",
		Qty:         15,
		Balance:     15,
		ItemVersion: 1,
	})
	require.NoError(t, err)

	var event MovementRecordedEvent
	require.NoError(t, json.Unmarshal(sent, &event))
	assert.Equal(t, EventTypeMovementRecorded, event.EventType)
	assert.NotEmpty(t, event.EventID, "event id is assigned when absent")
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "WIDGET-7", event.SKU)
	assert.Equal(t, int64(15), event.Qty)
}

func TestKafkaPublisher_KeepsCallerEventID(t *testing.T) {
	pub, producer := newMockPublisher(t)
	defer pub.Close()

	var sent []byte
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		var err error
		sent, err = msg.Value.Encode()
		return err
	})

	err := pub.PublishMovementRecorded(context.Background(), MovementRecordedEvent{
		EventID: "fixed-id",
		ItemID:  1,
		Type:    "OUT",
		Qty:     2,
	})
	require.NoError(t, err)

	var event MovementRecordedEvent
	require.NoError(t, json.Unmarshal(sent, &event))
	assert.Equal(t, "fixed-id", event.EventID)
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	pub, producer := newMockPublisher(t)
	defer pub.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := pub.PublishMovementRecorded(context.Background(), MovementRecordedEvent{
		ItemID: 1,
		Type:   "IN",
		Qty:    1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestNopPublisher(t *testing.T) {
	pub := NopPublisher{}
	assert.NoError(t, pub.PublishMovementRecorded(context.Background(), MovementRecordedEvent{}))
	assert.NoError(t, pub.Close())
}
