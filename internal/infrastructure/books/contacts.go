package books

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Contact is the accounting system's customer identity. Email is the
// de-duplication key; at most one contact exists per email.
type Contact struct {
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
}

// BillingAddress mirrors the accounting system's address block on a contact.
type BillingAddress struct {
	Attention string `json:"attention,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type ContactInput struct {
	ContactName    string          `json:"contact_name"`
	ContactType    string          `json:"contact_type"`
	Email          string          `json:"email"`
	CompanyName    string          `json:"company_name,omitempty"`
	CurrencyID     string          `json:"currency_id,omitempty"`
	BillingAddress *BillingAddress `json:"billing_address,omitempty"`
}

type contactEnvelope struct {
	Contact Contact `json:"contact"`
}

type contactListEnvelope struct {
	Contacts []Contact `json:"contacts"`
}

// CreateContact creates the contact with the unique-email header set so the
// accounting system enforces at most one identity per email.
func (c *Client) CreateContact(ctx context.Context, input ContactInput) (*Contact, error) {
	headers := map[string]string{
		"X-Unique-Identifier-Key":   "email",
		"X-Unique-Identifier-Value": input.Email,
	}
	var env contactEnvelope
	if err := c.do(ctx, http.MethodPost, "/contacts", nil, input, headers, &env); err != nil {
		return nil, err
	}
	return &env.Contact, nil
}

// FindContactByEmail searches contacts by email and returns the exact match,
// or nil when none matches.
func (c *Client) FindContactByEmail(ctx context.Context, email string) (*Contact, error) {
	query := url.Values{"email": []string{email}}
	var env contactListEnvelope
	if err := c.do(ctx, http.MethodGet, "/contacts", query, nil, nil, &env); err != nil {
		return nil, err
	}
	for i := range env.Contacts {
		if strings.EqualFold(strings.TrimSpace(env.Contacts[i].Email), strings.TrimSpace(email)) {
			return &env.Contacts[i], nil
		}
	}
	return nil, nil
}

// FindContactByName searches contacts by display name and returns the exact
// match, or nil when none matches.
func (c *Client) FindContactByName(ctx context.Context, name string) (*Contact, error) {
	query := url.Values{"contact_name": []string{name}}
	var env contactListEnvelope
	if err := c.do(ctx, http.MethodGet, "/contacts", query, nil, nil, &env); err != nil {
		return nil, err
	}
	for i := range env.Contacts {
		if strings.EqualFold(strings.TrimSpace(env.Contacts[i].ContactName), strings.TrimSpace(name)) {
			return &env.Contacts[i], nil
		}
	}
	return nil, nil
}
