package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/app/catalog"
	"github.com/prem-quety/brokerband-middleware/internal/repository/failure_repo"
)

// CurrencyRefresher drops a cached currency list so the next invoice run
// refetches it, used after currencies change in the accounting system.
type CurrencyRefresher interface {
	Refresh()
}

type AdminHandler struct {
	catalog    *catalog.Service
	failures   failure_repo.FailureRepository
	currencies CurrencyRefresher
	logger     *zap.Logger
}

func NewAdminHandler(c *catalog.Service, f failure_repo.FailureRepository, cur CurrencyRefresher, l *zap.Logger) *AdminHandler {
	return &AdminHandler{catalog: c, failures: f, currencies: cur, logger: l}
}

type syncRequest struct {
	Variants []catalog.VariantInput `json:"variants"`
}

func (h *AdminHandler) SyncCatalog(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for SyncCatalog", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Variants) == 0 {
		http.Error(w, "At least one variant is required", http.StatusBadRequest)
		return
	}

	report, err := h.catalog.SyncVariants(r.Context(), req.Variants)
	if err != nil {
		h.logger.Error("Error running catalog sync", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *AdminHandler) ListInvoiceFailures(w http.ResponseWriter, r *http.Request) {
	failures, err := h.failures.ListUnresolved(r.Context())
	if err != nil {
		h.logger.Error("Error listing invoice failures", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(failures)
}

func (h *AdminHandler) ListInvoiceFailuresByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}

	failures, err := h.failures.ListByOrderID(r.Context(), orderID)
	if err != nil {
		h.logger.Error("Error listing invoice failures for order",
			zap.String("order_id", orderID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(failures)
}

func (h *AdminHandler) RefreshCurrencies(w http.ResponseWriter, r *http.Request) {
	h.currencies.Refresh()
	w.WriteHeader(http.StatusNoContent)
}
