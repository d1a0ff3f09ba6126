package webhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/app/fulfillment"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/kafka"
)

// OrderWebhookHandler receives storefront order notifications. In synchronous
// mode the pipeline runs inline and the response carries the definitive
// outcome; in asynchronous mode the raw payload is queued keyed by order id
// so redeliveries for one order stay ordered.
type OrderWebhookHandler struct {
	service  *fulfillment.Service
	producer kafka.Producer
	topic    string
	async    bool
	logger   *zap.Logger
}

func NewOrderWebhookHandler(s *fulfillment.Service, producer kafka.Producer, topic string, async bool, l *zap.Logger) *OrderWebhookHandler {
	return &OrderWebhookHandler{
		service:  s,
		producer: producer,
		topic:    topic,
		async:    async,
		logger:   l,
	}
}

func (h *OrderWebhookHandler) HandleOrderEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("Failed to read webhook body", zap.Error(err))
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var event fulfillment.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("Invalid webhook payload", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if event.ID.String() == "" {
		h.logger.Warn("Webhook payload has no order id")
		http.Error(w, "Order id is required", http.StatusBadRequest)
		return
	}

	if h.async {
		if err := h.producer.Produce(r.Context(), h.topic, []byte(event.ID.String()), body); err != nil {
			h.logger.Error("Failed to queue order event",
				zap.String("order_id", event.ID.String()),
				zap.Error(err))
			http.Error(w, "Failed to queue order event", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusAccepted, &fulfillment.Outcome{
			Status:  fulfillment.StatusQueued,
			OrderID: event.ID.String(),
			Message: "order event queued for processing",
		})
		return
	}

	outcome, err := h.service.ProcessOrderEvent(r.Context(), &event, body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
