package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
)

// KafkaNotifier publishes events to a Kafka topic, keyed by submission id.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) (*KafkaNotifier, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka notifier initialized", "brokers", brokers, "topic", topic)

	return &KafkaNotifier{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

func (n *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(event.SubmissionID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := n.producer.SendMessage(msg)
	if err != nil {
		n.logger.Error("failed to publish event to kafka", "error", err)
		return err
	}

	n.logger.Info("event published to kafka",
		"topic", n.topic, "partition", partition, "offset", offset, "key", event.SubmissionID)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
