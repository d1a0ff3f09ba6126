package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a storefront shipping or billing address block.
type Address struct {
	Name         string `json:"name"`
	Address1     string `json:"address1"`
	City         string `json:"city"`
	Province     string `json:"province"`
	ProvinceCode string `json:"province_code"`
	Zip          string `json:"zip"`
	CountryCode  string `json:"country_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
}

type LineItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderSnapshot is the canonical representation of one storefront order at a
// point in time. There is at most one snapshot per OrderID; intake events
// replace all derived fields but never the identifier. RawPayload keeps the
// original notification verbatim for replay and debugging.
type OrderSnapshot struct {
	OrderID         string
	OrderNumber     int64
	Email           string
	Gateway         string
	FinancialStatus string
	Currency        string
	TotalPrice      decimal.Decimal
	SubtotalPrice   decimal.Decimal
	TotalTax        decimal.Decimal
	Customer        *Customer
	ShippingAddress *Address
	BillingAddress  *Address
	LineItems       []LineItem
	SourceCreatedAt string
	SourceUpdatedAt string
	ReceivedAt      time.Time
	RawPayload      []byte
}
