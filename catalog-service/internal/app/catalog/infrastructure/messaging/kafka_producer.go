package messaging

import (
	"context"
	"fmt"
	"time"

	"shopcatalog/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer пишет события в один топик (review_events или product_events)
type KafkaProducer struct {
	writer  *kafka.Writer
	topic   string
	service string
}

func NewKafkaProducer(brokers []string, topic, service string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{}, // один ключ (товар) - одна партиция, порядок событий сохраняется
		// запрос ждет записи, поэтому батч не копим
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &KafkaProducer{writer: writer, topic: topic, service: service}
}

func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewKafkaProduceTimer(p.service, p.topic)

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
