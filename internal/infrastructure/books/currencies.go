package books

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Currency struct {
	CurrencyID     string `json:"currency_id"`
	CurrencyCode   string `json:"currency_code"`
	IsBaseCurrency bool   `json:"is_base_currency"`
}

type currencyListEnvelope struct {
	Currencies []Currency `json:"currencies"`
}

// ListCurrencies fetches the organization's configured currencies.
func (c *Client) ListCurrencies(ctx context.Context) ([]Currency, error) {
	var env currencyListEnvelope
	if err := c.do(ctx, http.MethodGet, "/settings/currencies", nil, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Currencies, nil
}

// CurrencySource is the slice of the client the cache needs.
type CurrencySource interface {
	ListCurrencies(ctx context.Context) ([]Currency, error)
}

// CurrencyCache resolves order currency codes against the accounting
// system's currency list, fetched once and held for the process lifetime.
// It is an injected, explicitly-scoped object so tests can substitute a
// fake source; Refresh drops the cached list.
type CurrencyCache struct {
	source CurrencySource
	logger *zap.Logger

	mu     sync.Mutex
	byCode map[string]Currency
	base   *Currency
}

func NewCurrencyCache(source CurrencySource, l *zap.Logger) *CurrencyCache {
	return &CurrencyCache{source: source, logger: l}
}

// Resolve returns the currency matching the code, or the organization's base
// currency when no exact match exists. It never silently returns an
// arbitrary currency.
func (c *CurrencyCache) Resolve(ctx context.Context, code string) (Currency, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return Currency{}, err
	}

	if currency, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return currency, nil
	}
	if c.base != nil {
		c.logger.Warn("No exact currency match, falling back to base currency",
			zap.String("requested", code),
			zap.String("base", c.base.CurrencyCode))
		return *c.base, nil
	}
	return Currency{}, fmt.Errorf("books: no currency for code %q and no base currency configured", code)
}

// Refresh drops the cached list; the next Resolve refetches it.
func (c *CurrencyCache) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byCode = nil
	c.base = nil
}

func (c *CurrencyCache) loadLocked(ctx context.Context) error {
	if c.byCode != nil {
		return nil
	}
	currencies, err := c.source.ListCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("books: loading currency list: %w", err)
	}
	c.byCode = make(map[string]Currency, len(currencies))
	for _, currency := range currencies {
		c.byCode[strings.ToUpper(strings.TrimSpace(currency.CurrencyCode))] = currency
		if currency.IsBaseCurrency {
			base := currency
			c.base = &base
		}
	}
	c.logger.Info("Currency list cached", zap.Int("count", len(currencies)))
	return nil
}
