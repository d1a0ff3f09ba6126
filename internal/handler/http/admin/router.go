package admin

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/app/catalog"
	"github.com/prem-quety/brokerband-middleware/internal/repository/failure_repo"
)

func RegisterRoutes(r chi.Router, c *catalog.Service, f failure_repo.FailureRepository, cur CurrencyRefresher, l *zap.Logger) {
	handler := NewAdminHandler(c, f, cur, l.With(zap.String("component", "AdminHandler")))

	r.Route("/admin", func(r chi.Router) {
		r.Post("/catalog/sync", handler.SyncCatalog)
		r.Post("/currencies/refresh", handler.RefreshCurrencies)
		r.Get("/invoice-failures", handler.ListInvoiceFailures)
		r.Get("/invoice-failures/{orderID}", handler.ListInvoiceFailuresByOrder)
	})
}
