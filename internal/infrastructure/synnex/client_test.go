package synnex

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmitPORejectsNonXMLPayload(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())

	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"json", `{"order":"4411"}`},
		{"missing declaration", "<SynnexB2B></SynnexB2B>"},
		{"truncated document", "<?xml version=\"1.0\"?><SynnexB2B><OrderRequest>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.SubmitPO(context.Background(), tt.payload)
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
	assert.False(t, called, "invalid payloads must never be sent")
}

func TestSubmitPOReturnsRawResponse(t *testing.T) {
	const response = `<?xml version="1.0"?><SynnexB2B><OrderResponse><Code>accepted</Code></OrderResponse></SynnexB2B>`

	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		w.Write([]byte(response))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())
	payload := "<?xml version=\"1.0\"?><SynnexB2B></SynnexB2B>"

	got, err := client.SubmitPO(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, response, got)
	assert.Equal(t, payload, received)
}

func TestSubmitPONon200IsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())

	_, err := client.SubmitPO(context.Background(), "<?xml version=\"1.0\"?><SynnexB2B></SynnexB2B>")
	require.ErrorIs(t, err, ErrDistributorUnreachable)
}

func TestSubmitPOConnectionFailureIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())

	_, err := client.SubmitPO(context.Background(), "<?xml version=\"1.0\"?><SynnexB2B></SynnexB2B>")
	require.ErrorIs(t, err, ErrDistributorUnreachable)
}
