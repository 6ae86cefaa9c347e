package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/portfolio-tracker/internal/api/middleware"
	"github.com/dvloznov/portfolio-tracker/internal/domain"
	"github.com/dvloznov/portfolio-tracker/internal/ledger"
	"github.com/dvloznov/portfolio-tracker/internal/metrics"
)

const dateLayout = "2006-01-02"

// LedgerHandler exposes the transaction log, valuations, target setting and
// the derived report.
type LedgerHandler struct {
	store   *ledger.Store
	metrics *metrics.Service
	log     zerolog.Logger
}

func NewLedgerHandler(store *ledger.Store, metrics *metrics.Service, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{store: store, metrics: metrics, log: log}
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses.
func (h *LedgerHandler) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrUnknownCategory):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrStoreUnavailable):
		h.log.Error().Err(err).Msg("Ledger store unavailable")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Store unavailable")
	default:
		h.log.Error().Err(err).Msg("Unexpected ledger error")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// RecordTransaction handles POST /api/transactions
func (h *LedgerHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string          `json:"category"`
		Kind     string          `json:"kind"`
		Amount   decimal.Decimal `json:"amount"`
		Date     string          `json:"date"`
		Note     string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown category: "+req.Category)
		return
	}
	kind, ok := domain.ParseKind(req.Kind)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Kind must be deposit or withdraw")
		return
	}

	date := time.Now()
	if req.Date != "" {
		var err error
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
			return
		}
	}

	id, err := h.store.RecordTransaction(r.Context(), category, kind, req.Amount, date, req.Note)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// EditTransaction handles PUT /api/transactions/{id}; only the amount is
// editable.
func (h *LedgerHandler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.EditTransaction(r.Context(), id, req.Amount); err != nil {
		h.writeLedgerError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// DeleteTransaction handles DELETE /api/transactions/{id}. Undo of a fresh
// record is the same delete.
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := h.store.DeleteTransaction(r.Context(), id); err != nil {
		h.writeLedgerError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// ListHistory handles GET /api/history?page=N
func (h *LedgerHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		var err error
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid page")
			return
		}
	}

	txs, err := h.store.ListHistory(r.Context(), page)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"page":         page,
		"page_size":    ledger.PageSize,
	})
}

// SetValuation handles PUT /api/valuations/{category}
func (h *LedgerHandler) SetValuation(w http.ResponseWriter, r *http.Request) {
	category, ok := domain.ParseCategory(chi.URLParam(r, "category"))
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	var req struct {
		Value decimal.Decimal `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SetValuation(r.Context(), category, req.Value); err != nil {
		h.writeLedgerError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"category": string(category)})
}

// SetTarget handles PUT /api/target
func (h *LedgerHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value decimal.Decimal `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SetTarget(r.Context(), req.Value); err != nil {
		h.writeLedgerError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"value": req.Value.String()})
}

// GetReport handles GET /api/report. The report is always computed on
// demand; a store failure yields an error, never a partial report.
func (h *LedgerHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.metrics.Report(r.Context())
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}
