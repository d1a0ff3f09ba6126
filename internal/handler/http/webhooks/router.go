package webhooks

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/app/fulfillment"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/kafka"
)

func RegisterRoutes(r chi.Router, s *fulfillment.Service, producer kafka.Producer, topic string, async bool, l *zap.Logger) {
	handler := NewOrderWebhookHandler(s, producer, topic, async, l.With(zap.String("component", "OrderWebhookHandler")))

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/orders", handler.HandleOrderEvent)
	})
}
