package synnex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func priceServer(t *testing.T, status, price string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `<priceRequest version="2.8">`)
		assert.Contains(t, string(body), "<synnexSKU>SYN-100</synnexSKU>")

		fmt.Fprintf(w, `<?xml version="1.0"?>
<priceResponse>
  <PriceAvailabilityList>
    <synnexSKU>SYN-100</synnexSKU>
    <status>%s</status>
    <price>%s</price>
    <totalQuantity>14</totalQuantity>
  </PriceAvailabilityList>
</priceResponse>`, status, price)
	}))
}

func TestWholesalePrice(t *testing.T) {
	server := priceServer(t, "Active", "61.50")
	defer server.Close()

	client := NewPriceClient(server.URL, Credentials{UserID: "u", Password: "p", CustomerNumber: "123456"}, time.Second, zap.NewNop())

	price, err := client.WholesalePrice(context.Background(), "SYN-100")
	require.NoError(t, err)
	assert.Equal(t, "61.5", price.String())
}

func TestWholesalePriceDeadProduct(t *testing.T) {
	for _, status := range []string{"Not Found", "discontinued", "NotAuthorized"} {
		t.Run(status, func(t *testing.T) {
			server := priceServer(t, status, "61.50")
			defer server.Close()

			client := NewPriceClient(server.URL, Credentials{}, time.Second, zap.NewNop())

			_, err := client.WholesalePrice(context.Background(), "SYN-100")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "product status")
		})
	}
}

func TestWholesalePriceBadValue(t *testing.T) {
	server := priceServer(t, "Active", "n/a")
	defer server.Close()

	client := NewPriceClient(server.URL, Credentials{}, time.Second, zap.NewNop())

	_, err := client.WholesalePrice(context.Background(), "SYN-100")
	require.Error(t, err)
}

func TestWholesalePriceNoProductData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte(`<?xml version="1.0"?><priceResponse></priceResponse>`))
	}))
	defer server.Close()

	client := NewPriceClient(server.URL, Credentials{}, time.Second, zap.NewNop())

	_, err := client.WholesalePrice(context.Background(), "SYN-100")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no product data"))
}
