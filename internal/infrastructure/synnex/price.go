package synnex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product statuses under which the distributor will not fulfill a SKU and no
// usable price exists.
var deadProductStatuses = map[string]bool{
	"not found":     true,
	"discontinued":  true,
	"notauthorized": true,
}

type priceRequest struct {
	XMLName    xml.Name     `xml:"priceRequest"`
	Version    string       `xml:"version,attr"`
	CustomerNo string       `xml:"customerNo"`
	UserName   string       `xml:"userName"`
	Password   string       `xml:"password"`
	SkuList    priceSkuList `xml:"skuList"`
}

type priceSkuList struct {
	SynnexSKU  string `xml:"synnexSKU"`
	LineNumber int    `xml:"lineNumber"`
}

type priceResponse struct {
	XMLName xml.Name            `xml:"priceResponse"`
	List    []priceAvailability `xml:"PriceAvailabilityList"`
}

type priceAvailability struct {
	SynnexSKU               string `xml:"synnexSKU"`
	Status                  string `xml:"status"`
	GlobalProductStatusCode string `xml:"GlobalProductStatusCode"`
	Price                   string `xml:"price"`
	TotalQuantity           string `xml:"totalQuantity"`
}

// PriceClient fetches the distributor's live wholesale price for one SKU via
// the price/availability endpoint. It satisfies PriceSource for the encoder.
type PriceClient struct {
	endpoint   string
	creds      Credentials
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPriceClient(endpoint string, creds Credentials, timeout time.Duration, l *zap.Logger) *PriceClient {
	return &PriceClient{
		endpoint:   endpoint,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		logger:     l,
	}
}

func (c *PriceClient) WholesalePrice(ctx context.Context, sku string) (decimal.Decimal, error) {
	reqDoc := priceRequest{
		Version:    "2.8",
		CustomerNo: c.creds.CustomerNumber,
		UserName:   c.creds.UserID,
		Password:   c.creds.Password,
		SkuList:    priceSkuList{SynnexSKU: sku, LineNumber: 1},
	}
	body, err := xml.Marshal(reqDoc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal price request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(xml.Header+string(body)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Price lookup failed", zap.String("sku", sku), zap.Error(err))
		return decimal.Zero, fmt.Errorf("price lookup for sku %s: %w", sku, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price lookup for sku %s: reading response: %w", sku, err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price lookup for sku %s: status %d", sku, resp.StatusCode)
	}

	var parsed priceResponse
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("price lookup for sku %s: invalid response XML: %w", sku, err)
	}
	if len(parsed.List) == 0 {
		return decimal.Zero, fmt.Errorf("price lookup for sku %s: no product data", sku)
	}

	product := parsed.List[0]
	status := strings.ToLower(strings.TrimSpace(product.Status))
	if status == "" {
		status = strings.ToLower(strings.TrimSpace(product.GlobalProductStatusCode))
	}
	if deadProductStatuses[status] {
		return decimal.Zero, fmt.Errorf("price lookup for sku %s: product status %q", sku, status)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(product.Price))
	if err != nil {
		return decimal.Zero, fmt.Errorf("price lookup for sku %s: bad price %q: %w", sku, product.Price, err)
	}

	c.logger.Debug("Wholesale price fetched", zap.String("sku", sku), zap.String("price", price.String()))
	return price, nil
}
