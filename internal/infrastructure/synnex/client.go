package synnex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrDistributorUnreachable wraps transport-level failures talking to the
// distributor's order endpoint. The pipeline does not retry these.
var ErrDistributorUnreachable = errors.New("synnex: distributor unreachable")

// ErrInvalidPayload is returned when a payload that is not a well-formed XML
// document is handed to the transport. Nothing is sent in that case.
var ErrInvalidPayload = errors.New("synnex: payload is not a well-formed XML document")

// Client submits encoded purchase orders to the distributor's
// order-submission endpoint. It performs no retries; a failed submission is
// terminal for the attempt and left to redelivery-driven reprocessing.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, l *zap.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     l,
	}
}

// SubmitPO posts the PO document and returns the raw response body. The
// payload is validated before sending as a guard against encoder bugs
// reaching a production distributor.
func (c *Client) SubmitPO(ctx context.Context, payload string) (string, error) {
	if err := validateXMLDocument(payload); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build PO request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("PO submission failed", zap.String("endpoint", c.endpoint), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrDistributorUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrDistributorUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("PO submission returned non-200",
			zap.String("endpoint", c.endpoint),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrDistributorUnreachable, resp.StatusCode)
	}

	c.logger.Debug("PO submitted", zap.String("endpoint", c.endpoint), zap.Int("response_bytes", len(body)))
	return string(body), nil
}

func validateXMLDocument(payload string) error {
	if !strings.HasPrefix(payload, "<?xml") {
		return ErrInvalidPayload
	}
	decoder := xml.NewDecoder(strings.NewReader(payload))
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
}
