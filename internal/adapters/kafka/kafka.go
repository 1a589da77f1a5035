package kafka

import (
	"encoding/json"
	"fmt"

	"launcher-hub/internal/hub"

	"github.com/IBM/sarama"
)

// NewSyncProducer builds the producer used by the event publisher.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "launcher-hub"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// EventPublisher ships hub audit events (presence transitions, admin
// broadcasts) to one Kafka topic, keyed by user id so per-user ordering is
// preserved within a partition.
type EventPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventPublisher(producer sarama.SyncProducer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

func (p *EventPublisher) Publish(event hub.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
	}
	if event.UserID != "" {
		msg.Key = sarama.StringEncoder(event.UserID)
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.producer.Close()
}
