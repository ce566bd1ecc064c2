package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// retryPause is the wait before a message that must be retried is read again
const retryPause = 2 * time.Second

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Brokers       string
	Topic         string
	DLQTopic      string
	ConsumerGroup string
}

// Consumer reads the user events topic and hands each message to a Processor
type Consumer struct {
	consumer  *kafka.Consumer
	processor *Processor
	config    *ConsumerConfig
	logger    *slog.Logger
}

// NewConsumer creates a Kafka consumer with manual offset commits
func NewConsumer(config *ConsumerConfig, processor *Processor, logger *slog.Logger) (*Consumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  config.Brokers,
		"group.id":           config.ConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	logger.Info("Kafka consumer initialized",
		"brokers", config.Brokers,
		"topic", config.Topic,
		"group", config.ConsumerGroup)

	return &Consumer{consumer: c, processor: processor, config: config, logger: logger}, nil
}

// Start consumes until ctx is done
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.config.Topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}
	c.logger.Info("Starting to consume messages", "topic", c.config.Topic)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer shutting down")
			return nil
		default:
		}

		msg, err := c.consumer.ReadMessage(time.Second)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			c.logger.Error("Error reading message", "error", err)
			continue
		}

		if outcome := c.processor.Handle(ctx, msg.Value); outcome.Commit() {
			c.commit(msg)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryPause):
		}
		if err := c.rewind(msg); err != nil {
			c.logger.Error("Failed to rewind for retry", "offset", msg.TopicPartition.Offset, "error", err)
		}
	}
}

// rewind moves the partition back so the message is read again
func (c *Consumer) rewind(msg *kafka.Message) error {
	return c.consumer.Seek(msg.TopicPartition, 1000)
}

func (c *Consumer) commit(msg *kafka.Message) {
	if _, err := c.consumer.CommitMessage(msg); err != nil {
		c.logger.Error("Failed to commit offset",
			"partition", msg.TopicPartition.Partition,
			"offset", msg.TopicPartition.Offset,
			"error", err)
	}
}

// Close closes the consumer
func (c *Consumer) Close() {
	c.logger.Info("Closing Kafka consumer")
	if err := c.consumer.Close(); err != nil {
		c.logger.Error("Failed to close consumer", "error", err)
	}
}
