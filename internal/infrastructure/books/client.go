// Package books is a client for the accounting system's REST API: contacts,
// items, invoices and currencies, all scoped by an organization identifier
// and authorized with a bearer token obtained from a TokenSource. OAuth
// refresh and token persistence live outside this service.
package books

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const duplicateNameCode = 3062

// ErrDuplicateContactName signals the accounting system rejected a contact
// create because the display name already exists (distinct from an email
// collision). Callers fall back to search.
var ErrDuplicateContactName = errors.New("books: duplicate contact name")

// TokenSource supplies a currently valid bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token on every call. Useful for
// configuration-supplied tokens and tests.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("books: no token configured")
	}
	return string(s), nil
}

// APIError carries the accounting system's error code and message.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("books api error %d (http %d): %s", e.Code, e.Status, e.Message)
}

type Client struct {
	baseURL    string
	orgID      string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, orgID string, tokens TokenSource, timeout time.Duration, l *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		orgID:      orgID,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     l,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, headers map[string]string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("books: obtaining token: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("organization_id", c.orgID)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("books: marshalling request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), body)
	if err != nil {
		return fmt.Errorf("books: building request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Books API request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("books: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("books: reading response for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil {
			apiErr.Message = string(raw)
		}
		if apiErr.Code == duplicateNameCode {
			return fmt.Errorf("%w: %v", ErrDuplicateContactName, apiErr)
		}
		c.logger.Warn("Books API returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Int("code", apiErr.Code))
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("books: decoding response for %s: %w", path, err)
		}
	}
	return nil
}
