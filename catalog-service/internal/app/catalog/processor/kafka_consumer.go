package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const serviceName = "rating-worker"

// MessageReader - часть kafka.Reader, которой пользуется consumer
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Stats() kafka.ReaderStats
	Close() error
}

// errMalformedEvent - сообщение нельзя разобрать, повтор не поможет
var errMalformedEvent = errors.New("malformed review event")

// RatingEventConsumer читает review_events и пересчитывает агрегаты
// по RATING_RECOMPUTE_REQUESTED. Offset коммитится только после успешного пересчета
type RatingEventConsumer struct {
	reader     MessageReader
	aggregator service.RatingAggregator
	topic      string
	groupID    string

	retryMin time.Duration
	retryMax time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
}

func NewRatingEventConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	aggregator service.RatingAggregator,
) *RatingEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.FirstOffset,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: time.Second,
		ErrorLogger:    kafka.LoggerFunc(logger.Printf),
	})

	return newRatingEventConsumer(reader, topic, groupID, aggregator)
}

func newRatingEventConsumer(reader MessageReader, topic, groupID string, aggregator service.RatingAggregator) *RatingEventConsumer {
	return &RatingEventConsumer{
		reader:     reader,
		aggregator: aggregator,
		topic:      topic,
		groupID:    groupID,
		retryMin:   time.Second,
		retryMax:   30 * time.Second,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Start запускает чтение в отдельной горутине
func (c *RatingEventConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting rating event consumer")
	go c.consume(ctx)
}

// Stop дожидается завершения текущего сообщения и закрывает reader
func (c *RatingEventConsumer) Stop() {
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close kafka reader")
	}
	logger.Info().Msg("Rating event consumer stopped")
}

// Stats - статистика reader для health endpoint
func (c *RatingEventConsumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}

func (c *RatingEventConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.RecordKafkaError(serviceName, c.topic, "fetch")
			logger.Error().Err(err).Msg("Error fetching message")
			if !c.sleep(ctx, c.retryMin) {
				return
			}
			continue
		}

		if !c.handleWithRetry(ctx, message) {
			return
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.RecordKafkaError(serviceName, c.topic, "commit")
			logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error committing message")
		}
	}
}

// handleWithRetry повторяет обработку с нарастающей паузой, пока она не удастся.
// false - consumer останавливается и сообщение остается незакоммиченным
func (c *RatingEventConsumer) handleWithRetry(ctx context.Context, message kafka.Message) bool {
	backoff := c.retryMin

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := c.processMessage(ctx, message)

		if err == nil {
			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
			return true
		}

		if errors.Is(err, errMalformedEvent) {
			metrics.RecordKafkaError(serviceName, c.topic, "decode")
			logger.Error().Err(err).
				Int64("offset", message.Offset).
				Int("partition", message.Partition).
				Msg("Skipping malformed message")
			return true
		}

		metrics.RecordKafkaError(serviceName, c.topic, "process")
		logger.Error().Err(err).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Int64("offset", message.Offset).
			Msg("Error processing message")

		if !c.sleep(ctx, backoff) {
			return false
		}
		backoff *= 2
		if backoff > c.retryMax {
			backoff = c.retryMax
		}
	}
}

func (c *RatingEventConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ReviewEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	if event.EventType != entity.EventRatingRecomputeRequested {
		logger.Debug().Str("event_type", event.EventType).Str("product_id", event.ProductID).Msg("Event ignored")
		return nil
	}

	productID, err := primitive.ObjectIDFromHex(event.ProductID)
	if err != nil {
		return fmt.Errorf("%w: bad product id %q", errMalformedEvent, event.ProductID)
	}

	start := time.Now()
	agg, err := c.aggregator.Recompute(ctx, productID)
	metrics.RecordRatingRecompute("worker", time.Since(start), err)

	if errors.Is(err, repository.ErrProductNotFound) {
		logger.Info().Str("product_id", event.ProductID).Msg("Product deleted before recompute, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to recompute rating: %w", err)
	}

	logger.Info().
		Str("product_id", event.ProductID).
		Str("reason", event.Reason).
		Float64("rating", agg.Rating).
		Int("num_reviews", agg.NumReviews).
		Msg("Rating recomputed")

	return nil
}

func (c *RatingEventConsumer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
