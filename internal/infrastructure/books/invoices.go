package books

import (
	"context"
	"fmt"
	"net/http"
)

type InvoiceLineItem struct {
	ItemID   string  `json:"item_id"`
	Rate     float64 `json:"rate"`
	Quantity int     `json:"quantity"`
}

type InvoiceInput struct {
	CustomerID      string            `json:"customer_id"`
	CurrencyID      string            `json:"currency_id,omitempty"`
	Date            string            `json:"date"`
	ReferenceNumber string            `json:"reference_number"`
	LineItems       []InvoiceLineItem `json:"line_items"`
	PaymentTerms    int               `json:"payment_terms"`
}

type Invoice struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerID    string  `json:"customer_id"`
	Total         float64 `json:"total"`
}

type invoiceEnvelope struct {
	Invoice Invoice `json:"invoice"`
}

type emailRequest struct {
	ToMailIDs []string `json:"to_mail_ids"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
}

func (c *Client) CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error) {
	var env invoiceEnvelope
	if err := c.do(ctx, http.MethodPost, "/invoices", nil, input, nil, &env); err != nil {
		return nil, err
	}
	return &env.Invoice, nil
}

// EmailInvoice sends the created invoice to the customer's address.
func (c *Client) EmailInvoice(ctx context.Context, invoiceID, toEmail, subject, body string) error {
	req := emailRequest{
		ToMailIDs: []string{toEmail},
		Subject:   subject,
		Body:      body,
	}
	path := fmt.Sprintf("/invoices/%s/email", invoiceID)
	return c.do(ctx, http.MethodPost, path, nil, req, nil, nil)
}
