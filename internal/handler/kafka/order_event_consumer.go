package kafka

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/app/fulfillment"
)

// OrderEventConsumer runs the fulfillment pipeline for queued order events.
// Malformed messages are logged and committed; pipeline errors are returned
// so the consumer retries the event in place instead of committing past it.
type OrderEventConsumer struct {
	service *fulfillment.Service
	logger  *zap.Logger
}

func NewOrderEventConsumer(s *fulfillment.Service, l *zap.Logger) *OrderEventConsumer {
	return &OrderEventConsumer{service: s, logger: l}
}

func (c *OrderEventConsumer) HandleMessage(ctx context.Context, message []byte) error {
	var event fulfillment.OrderEvent
	if err := json.Unmarshal(message, &event); err != nil {
		c.logger.Error("Error unmarshalling order event message",
			zap.Error(err), zap.String("raw_message", string(message)))
		return nil
	}

	outcome, err := c.service.ProcessOrderEvent(ctx, &event, message)
	if err != nil {
		c.logger.Error("Error processing queued order event",
			zap.String("order_id", event.ID.String()),
			zap.Error(err))
		return err
	}

	c.logger.Info("Processed queued order event",
		zap.String("order_id", outcome.OrderID),
		zap.String("status", outcome.Status))
	return nil
}
