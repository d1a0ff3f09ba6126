package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageHandler func(ctx context.Context, message []byte) error

// Pause between handler attempts for a failed message.
const handlerRetryPause = 5 * time.Second

// StartConsumer reads from the given topic until ctx is cancelled. A message
// whose handler fails is retried in place: the consumer never fetches past an
// unhandled message, so its offset is never committed over and the event is
// not lost. A failing message blocks its partition until the handler
// succeeds or the consumer shuts down.
func StartConsumer(ctx context.Context, brokers []string, topic, groupID string, handler MessageHandler, l *zap.Logger) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		Logger:         zap.NewStdLog(l.With(zap.String("kafka_component", "consumer"))),
	})

	l.Info("Kafka consumer started",
		zap.String("topic", topic),
		zap.String("group_id", groupID),
		zap.Strings("brokers", brokers))

	go func() {
		defer func() {
			if err := reader.Close(); err != nil {
				l.Error("Failed to close Kafka consumer", zap.Error(err))
			} else {
				l.Info("Kafka consumer closed.")
			}
		}()

		for {
			m, err := reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				l.Error("Error fetching message from Kafka", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			messageLogger := l.With(
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset))

			if err := handleWithRetry(ctx, handler, m.Value, handlerRetryPause, messageLogger); err != nil {
				return
			}

			if err := reader.CommitMessages(ctx, m); err != nil {
				messageLogger.Error("Failed to commit offset for message", zap.Error(err))
			} else {
				messageLogger.Debug("Committed message offset")
			}
		}
	}()
	return nil
}

// handleWithRetry invokes the handler until it succeeds or ctx is cancelled.
// Returning a non-nil error means the consumer is shutting down; the message
// stays uncommitted and the group redelivers it on the next session.
func handleWithRetry(ctx context.Context, handler MessageHandler, message []byte, pause time.Duration, l *zap.Logger) error {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, message)
		if err == nil {
			return nil
		}
		l.Error("Error handling Kafka message, will retry",
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
}
