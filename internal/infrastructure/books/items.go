package books

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Item is a previously-synced accounting item record addressable on invoice
// lines.
type Item struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	SKU    string `json:"sku"`
}

type itemListEnvelope struct {
	Items []Item `json:"items"`
}

// FindItemBySKU looks up an accounting item by SKU and returns the exact
// match, or nil when none matches.
func (c *Client) FindItemBySKU(ctx context.Context, sku string) (*Item, error) {
	query := url.Values{"sku": []string{sku}}
	var env itemListEnvelope
	if err := c.do(ctx, http.MethodGet, "/items", query, nil, nil, &env); err != nil {
		return nil, err
	}
	for i := range env.Items {
		if strings.EqualFold(strings.TrimSpace(env.Items[i].SKU), strings.TrimSpace(sku)) {
			return &env.Items[i], nil
		}
	}
	return nil, nil
}
