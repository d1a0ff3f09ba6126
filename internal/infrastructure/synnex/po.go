package synnex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

var (
	// ErrMalformedOrder means the snapshot is missing a shipping address or
	// line items and no document can be built from it.
	ErrMalformedOrder = errors.New("synnex: order missing shipping address or line items")
	// ErrUnmappedSKU means the storefront variant has no recorded distributor
	// SKU. The encoder never guesses a SKU from storefront data.
	ErrUnmappedSKU = errors.New("synnex: no distributor sku mapped for variant")
	// ErrPriceUnavailable means the live wholesale price could not be
	// obtained. Submitting a zero or stale price is worse than not submitting.
	ErrPriceUnavailable = errors.New("synnex: live wholesale price unavailable")
)

// Defaults for required shipment sub-elements the distributor rejects when
// omitted, matching the values the distributor's test harness accepts.
const (
	defaultState   = "NA"
	defaultZip     = "00000"
	defaultCountry = "US"
	defaultContact = "Unnamed"
	defaultPhone   = "0000000000"
	defaultEmail   = "no-reply@example.com"
)

type Credentials struct {
	UserID         string
	Password       string
	CustomerNumber string
}

// SKUResolver maps a storefront variant identifier to the distributor's SKU.
type SKUResolver interface {
	DistributorSKU(ctx context.Context, variantID string) (string, error)
}

// PriceSource returns the distributor's current wholesale price for a SKU.
type PriceSource interface {
	WholesalePrice(ctx context.Context, sku string) (decimal.Decimal, error)
}

// POEncoder builds the distributor's XML purchase-order document from an
// order snapshot. Unit prices are always the distributor's own live wholesale
// price; the storefront retail price never reaches the wire.
type POEncoder struct {
	creds          Credentials
	poPrefix       string
	shipMethodCode string
	skus           SKUResolver
	prices         PriceSource
	logger         *zap.Logger
}

func NewPOEncoder(creds Credentials, poPrefix, shipMethodCode string, skus SKUResolver, prices PriceSource, l *zap.Logger) *POEncoder {
	return &POEncoder{
		creds:          creds,
		poPrefix:       poPrefix,
		shipMethodCode: shipMethodCode,
		skus:           skus,
		prices:         prices,
		logger:         l,
	}
}

type poDocument struct {
	XMLName      xml.Name       `xml:"SynnexB2B"`
	Credential   poCredential   `xml:"Credential"`
	OrderRequest poOrderRequest `xml:"OrderRequest"`
}

type poCredential struct {
	UserID   string `xml:"UserID"`
	Password string `xml:"Password"`
}

type poOrderRequest struct {
	CustomerNumber string     `xml:"CustomerNumber"`
	PONumber       string     `xml:"PONumber"`
	DropShipFlag   string     `xml:"DropShipFlag"`
	Shipment       poShipment `xml:"Shipment"`
	Payment        poPayment  `xml:"Payment"`
	Items          poItems    `xml:"Items"`
}

type poShipment struct {
	ShipTo        poShipTo        `xml:"ShipTo"`
	ShipToContact poShipToContact `xml:"ShipToContact"`
	ShipMethod    poShipMethod    `xml:"ShipMethod"`
}

type poShipTo struct {
	AddressName1 string `xml:"AddressName1"`
	AddressLine1 string `xml:"AddressLine1"`
	City         string `xml:"City"`
	State        string `xml:"State"`
	ZipCode      string `xml:"ZipCode"`
	Country      string `xml:"Country"`
}

type poShipToContact struct {
	ContactName  string `xml:"ContactName"`
	PhoneNumber  string `xml:"PhoneNumber"`
	EmailAddress string `xml:"EmailAddress"`
}

type poShipMethod struct {
	Code string `xml:"Code"`
}

type poPayment struct {
	BillTo poBillTo `xml:"BillTo"`
}

type poBillTo struct {
	Code string `xml:"code,attr"`
}

type poItems struct {
	Item []poItem `xml:"Item"`
}

type poItem struct {
	LineNumber    int    `xml:"lineNumber,attr"`
	SKU           string `xml:"SKU"`
	UnitPrice     string `xml:"UnitPrice"`
	OrderQuantity int    `xml:"OrderQuantity"`
}

// PONumber derives the distributor-facing purchase order number for an order
// identifier. The fixed prefix keeps it unique and traceable to its source.
func (e *POEncoder) PONumber(orderID string) string {
	return e.poPrefix + orderID
}

// Encode builds the PO document. The returned string is guaranteed to start
// with an XML declaration; callers treat any other prefix as a transport
// safety violation. Preconditions are checked before any price lookup so a
// malformed order never causes a network call.
func (e *POEncoder) Encode(ctx context.Context, order *domain.OrderSnapshot) (string, error) {
	if order == nil || order.ShippingAddress == nil || len(order.LineItems) == 0 {
		return "", ErrMalformedOrder
	}

	ship := order.ShippingAddress
	doc := poDocument{
		Credential: poCredential{
			UserID:   e.creds.UserID,
			Password: e.creds.Password,
		},
		OrderRequest: poOrderRequest{
			CustomerNumber: e.creds.CustomerNumber,
			PONumber:       e.PONumber(order.OrderID),
			DropShipFlag:   "Y",
			Shipment: poShipment{
				ShipTo: poShipTo{
					AddressName1: fallback(ship.Name, defaultContact),
					AddressLine1: ship.Address1,
					City:         ship.City,
					State:        fallback(ship.ProvinceCode, defaultState),
					ZipCode:      fallback(ship.Zip, defaultZip),
					Country:      fallback(ship.CountryCode, defaultCountry),
				},
				ShipToContact: poShipToContact{
					ContactName:  fallback(ship.Name, defaultContact),
					PhoneNumber:  fallback(ship.Phone, defaultPhone),
					EmailAddress: fallback(order.Email, defaultEmail),
				},
				ShipMethod: poShipMethod{Code: e.shipMethodCode},
			},
			Payment: poPayment{
				BillTo: poBillTo{Code: e.creds.CustomerNumber},
			},
		},
	}

	for idx, line := range order.LineItems {
		sku, err := e.skus.DistributorSKU(ctx, line.VariantID)
		if err != nil {
			e.logger.Warn("No distributor SKU for variant",
				zap.String("order_id", order.OrderID),
				zap.String("variant_id", line.VariantID),
				zap.Error(err))
			return "", fmt.Errorf("%w: variant %s: %v", ErrUnmappedSKU, line.VariantID, err)
		}

		price, err := e.prices.WholesalePrice(ctx, sku)
		if err != nil {
			e.logger.Warn("Live wholesale price lookup failed",
				zap.String("order_id", order.OrderID),
				zap.String("sku", sku),
				zap.Error(err))
			return "", fmt.Errorf("%w: sku %s: %v", ErrPriceUnavailable, sku, err)
		}
		if price.IsZero() || price.IsNegative() {
			return "", fmt.Errorf("%w: sku %s: non-positive price %s", ErrPriceUnavailable, sku, price)
		}

		doc.OrderRequest.Items.Item = append(doc.OrderRequest.Items.Item, poItem{
			LineNumber:    idx + 1,
			SKU:           sku,
			UnitPrice:     price.StringFixed(2),
			OrderQuantity: line.Quantity,
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal PO document: %w", err)
	}
	return xml.Header + string(body), nil
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
