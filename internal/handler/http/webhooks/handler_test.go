package webhooks

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/app/fulfillment"
	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

type stubOrderRepo struct{}

func (stubOrderRepo) Upsert(context.Context, *domain.OrderSnapshot) error { return nil }
func (stubOrderRepo) GetByOrderID(context.Context, string) (*domain.OrderSnapshot, error) {
	return nil, sql.ErrNoRows
}

type stubSubmissionRepo struct{}

func (stubSubmissionRepo) Create(context.Context, *domain.SubmissionResult) error { return nil }
func (stubSubmissionRepo) GetByOrderID(context.Context, string) (*domain.SubmissionResult, error) {
	return nil, sql.ErrNoRows
}

type stubEncoder struct{}

func (stubEncoder) Encode(context.Context, *domain.OrderSnapshot) (string, error) {
	return "<?xml version=\"1.0\"?><SynnexB2B></SynnexB2B>", nil
}
func (stubEncoder) PONumber(orderID string) string { return "BB-" + orderID }

type stubSubmitter struct{}

func (stubSubmitter) SubmitPO(context.Context, string) (string, error) {
	return `<?xml version="1.0"?><SynnexB2B><OrderResponse><PONumber>BB-4411</PONumber><Code>rejected</Code></OrderResponse></SynnexB2B>`, nil
}

type recordingProducer struct {
	topic   string
	key     []byte
	message []byte
	calls   int
}

func (p *recordingProducer) Produce(_ context.Context, topic string, key, message []byte) error {
	p.calls++
	p.topic = topic
	p.key = key
	p.message = message
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func newTestService() *fulfillment.Service {
	return fulfillment.NewService(stubOrderRepo{}, stubSubmissionRepo{}, stubEncoder{}, stubSubmitter{}, nil, zap.NewNop())
}

const webhookBody = `{"id": 4411, "updated_at": "2024-05-01T10:00:00-04:00", "shipping_address": {"address1": "12 Main St"}, "line_items": [{"variant_id": 7001, "quantity": 1, "price": "10.00"}]}`

func TestHandleOrderEventSync(t *testing.T) {
	handler := NewOrderWebhookHandler(newTestService(), nil, "", false, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", strings.NewReader(webhookBody))
	rec := httptest.NewRecorder()

	handler.HandleOrderEvent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"success"`)
	assert.Contains(t, rec.Body.String(), `"order_id":"4411"`)
}

func TestHandleOrderEventAsyncQueues(t *testing.T) {
	producer := &recordingProducer{}
	handler := NewOrderWebhookHandler(newTestService(), producer, "storefront_order_events", true, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", strings.NewReader(webhookBody))
	rec := httptest.NewRecorder()

	handler.HandleOrderEvent(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"queued"`)

	require.Equal(t, 1, producer.calls)
	assert.Equal(t, "storefront_order_events", producer.topic)
	assert.Equal(t, "4411", string(producer.key), "messages are keyed by order id for per-order ordering")
	assert.JSONEq(t, webhookBody, string(producer.message), "the raw payload is queued verbatim")
}

func TestHandleOrderEventBadPayload(t *testing.T) {
	handler := NewOrderWebhookHandler(newTestService(), nil, "", false, zap.NewNop())

	for name, body := range map[string]string{
		"not json":   "<xml/>",
		"missing id": `{"email": "buyer@example.com"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", strings.NewReader(body))
			rec := httptest.NewRecorder()

			handler.HandleOrderEvent(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
