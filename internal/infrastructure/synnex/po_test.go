package synnex

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

type fakeSKUResolver struct {
	bySKU map[string]string
	calls int
}

func (f *fakeSKUResolver) DistributorSKU(_ context.Context, variantID string) (string, error) {
	f.calls++
	sku, ok := f.bySKU[variantID]
	if !ok {
		return "", fmt.Errorf("no mapping for %s", variantID)
	}
	return sku, nil
}

type fakePriceSource struct {
	prices map[string]decimal.Decimal
	err    error
	calls  int
}

func (f *fakePriceSource) WholesalePrice(_ context.Context, sku string) (decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	price, ok := f.prices[sku]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for %s", sku)
	}
	return price, nil
}

func testOrder() *domain.OrderSnapshot {
	return &domain.OrderSnapshot{
		OrderID: "4411",
		Email:   "buyer@example.com",
		ShippingAddress: &domain.Address{
			Name:         "Dana Buyer",
			Address1:     "12 Main St",
			City:         "Toronto",
			ProvinceCode: "ON",
			Zip:          "M5V 1A1",
			CountryCode:  "CA",
			Phone:        "4165550000",
		},
		LineItems: []domain.LineItem{
			{VariantID: "v-1", SKU: "SHOP-1", Quantity: 2, Price: decimal.NewFromFloat(99.99)},
		},
	}
}

func newTestEncoder(skus SKUResolver, prices PriceSource) *POEncoder {
	creds := Credentials{UserID: "user", Password: "secret", CustomerNumber: "123456"}
	return NewPOEncoder(creds, "BB-", "FG", skus, prices, zap.NewNop())
}

func TestEncodeMalformedOrderSkipsLookups(t *testing.T) {
	tests := []struct {
		name  string
		order *domain.OrderSnapshot
	}{
		{"missing shipping address", &domain.OrderSnapshot{
			OrderID:   "1",
			LineItems: []domain.LineItem{{VariantID: "v-1", Quantity: 1}},
		}},
		{"no line items", &domain.OrderSnapshot{
			OrderID:         "2",
			ShippingAddress: &domain.Address{Address1: "12 Main St"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skus := &fakeSKUResolver{}
			prices := &fakePriceSource{}
			encoder := newTestEncoder(skus, prices)

			_, err := encoder.Encode(context.Background(), tt.order)

			require.ErrorIs(t, err, ErrMalformedOrder)
			assert.Zero(t, skus.calls, "malformed order must not trigger a SKU lookup")
			assert.Zero(t, prices.calls, "malformed order must not trigger a price lookup")
		})
	}
}

func TestEncodeUnmappedVariant(t *testing.T) {
	skus := &fakeSKUResolver{bySKU: map[string]string{}}
	prices := &fakePriceSource{}
	encoder := newTestEncoder(skus, prices)

	_, err := encoder.Encode(context.Background(), testOrder())

	require.ErrorIs(t, err, ErrUnmappedSKU)
	assert.Zero(t, prices.calls, "unmapped variant must fail before the price lookup")
}

func TestEncodePriceUnavailable(t *testing.T) {
	skus := &fakeSKUResolver{bySKU: map[string]string{"v-1": "SYN-100"}}

	t.Run("lookup error", func(t *testing.T) {
		prices := &fakePriceSource{err: fmt.Errorf("endpoint down")}
		encoder := newTestEncoder(skus, prices)

		_, err := encoder.Encode(context.Background(), testOrder())
		require.ErrorIs(t, err, ErrPriceUnavailable)
	})

	t.Run("zero price", func(t *testing.T) {
		prices := &fakePriceSource{prices: map[string]decimal.Decimal{"SYN-100": decimal.Zero}}
		encoder := newTestEncoder(skus, prices)

		_, err := encoder.Encode(context.Background(), testOrder())
		require.ErrorIs(t, err, ErrPriceUnavailable)
	})
}

func TestEncodeUsesWholesalePriceNotRetail(t *testing.T) {
	skus := &fakeSKUResolver{bySKU: map[string]string{"v-1": "SYN-100"}}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{"SYN-100": decimal.NewFromFloat(61.5)}}
	encoder := newTestEncoder(skus, prices)

	payload, err := encoder.Encode(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Contains(t, payload, "<UnitPrice>61.50</UnitPrice>")
	assert.NotContains(t, payload, "99.99", "storefront retail price must never reach the wire")
}

func TestEncodeDocumentShape(t *testing.T) {
	skus := &fakeSKUResolver{bySKU: map[string]string{"v-1": "SYN-100", "v-2": "SYN-200"}}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{
		"SYN-100": decimal.NewFromFloat(61.5),
		"SYN-200": decimal.NewFromInt(12),
	}}
	encoder := newTestEncoder(skus, prices)

	order := testOrder()
	order.LineItems = append(order.LineItems, domain.LineItem{VariantID: "v-2", SKU: "SHOP-2", Quantity: 1, Price: decimal.NewFromInt(30)})

	payload, err := encoder.Encode(context.Background(), order)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payload, "<?xml"), "payload must start with the XML declaration")
	assert.Contains(t, payload, "<PONumber>BB-4411</PONumber>")
	assert.Contains(t, payload, "<CustomerNumber>123456</CustomerNumber>")
	assert.Contains(t, payload, "<DropShipFlag>Y</DropShipFlag>")
	assert.Contains(t, payload, `<BillTo code="123456">`)
	assert.Contains(t, payload, `<Item lineNumber="1">`)
	assert.Contains(t, payload, `<Item lineNumber="2">`)
	assert.Contains(t, payload, "<SKU>SYN-100</SKU>")
	assert.Contains(t, payload, "<SKU>SYN-200</SKU>")
	assert.Contains(t, payload, "<Code>FG</Code>")
}

func TestEncodeShipmentDefaults(t *testing.T) {
	skus := &fakeSKUResolver{bySKU: map[string]string{"v-1": "SYN-100"}}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{"SYN-100": decimal.NewFromInt(10)}}
	encoder := newTestEncoder(skus, prices)

	order := testOrder()
	order.Email = ""
	order.ShippingAddress = &domain.Address{Address1: "12 Main St", City: "Toronto"}

	payload, err := encoder.Encode(context.Background(), order)
	require.NoError(t, err)

	assert.Contains(t, payload, "<State>NA</State>")
	assert.Contains(t, payload, "<ZipCode>00000</ZipCode>")
	assert.Contains(t, payload, "<Country>US</Country>")
	assert.Contains(t, payload, "<ContactName>Unnamed</ContactName>")
	assert.Contains(t, payload, "<PhoneNumber>0000000000</PhoneNumber>")
	assert.Contains(t, payload, "<EmailAddress>no-reply@example.com</EmailAddress>")
}
