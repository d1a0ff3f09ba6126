package books

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCurrencySource struct {
	currencies []Currency
	err        error
	calls      int
}

func (f *fakeCurrencySource) ListCurrencies(context.Context) ([]Currency, error) {
	f.calls++
	return f.currencies, f.err
}

func TestCurrencyCacheResolvesExactCode(t *testing.T) {
	source := &fakeCurrencySource{currencies: []Currency{
		{CurrencyID: "cur-usd", CurrencyCode: "USD", IsBaseCurrency: true},
		{CurrencyID: "cur-cad", CurrencyCode: "CAD"},
	}}
	cache := NewCurrencyCache(source, zap.NewNop())

	currency, err := cache.Resolve(context.Background(), "cad")
	require.NoError(t, err)
	assert.Equal(t, "cur-cad", currency.CurrencyID)

	currency, err = cache.Resolve(context.Background(), " USD ")
	require.NoError(t, err)
	assert.Equal(t, "cur-usd", currency.CurrencyID)

	assert.Equal(t, 1, source.calls, "the currency list is fetched once per process")
}

func TestCurrencyCacheFallsBackToBase(t *testing.T) {
	source := &fakeCurrencySource{currencies: []Currency{
		{CurrencyID: "cur-usd", CurrencyCode: "USD", IsBaseCurrency: true},
	}}
	cache := NewCurrencyCache(source, zap.NewNop())

	currency, err := cache.Resolve(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "cur-usd", currency.CurrencyID, "unknown codes resolve to the base currency")
}

func TestCurrencyCacheNoBaseCurrency(t *testing.T) {
	source := &fakeCurrencySource{currencies: []Currency{
		{CurrencyID: "cur-cad", CurrencyCode: "CAD"},
	}}
	cache := NewCurrencyCache(source, zap.NewNop())

	_, err := cache.Resolve(context.Background(), "EUR")
	require.Error(t, err)
}

func TestCurrencyCacheSourceFailureIsNotCached(t *testing.T) {
	source := &fakeCurrencySource{err: fmt.Errorf("books: status 500")}
	cache := NewCurrencyCache(source, zap.NewNop())

	_, err := cache.Resolve(context.Background(), "CAD")
	require.Error(t, err)

	source.err = nil
	source.currencies = []Currency{{CurrencyID: "cur-cad", CurrencyCode: "CAD"}}

	currency, err := cache.Resolve(context.Background(), "CAD")
	require.NoError(t, err)
	assert.Equal(t, "cur-cad", currency.CurrencyID)
}

func TestCurrencyCacheRefresh(t *testing.T) {
	source := &fakeCurrencySource{currencies: []Currency{
		{CurrencyID: "cur-cad", CurrencyCode: "CAD"},
	}}
	cache := NewCurrencyCache(source, zap.NewNop())

	_, err := cache.Resolve(context.Background(), "CAD")
	require.NoError(t, err)

	cache.Refresh()

	_, err = cache.Resolve(context.Background(), "CAD")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "refresh drops the cached list")
}
