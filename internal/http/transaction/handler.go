package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/cache"
	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/export"
	"github.com/ddanshin/kopilka/internal/report"
	"github.com/ddanshin/kopilka/internal/transaction"
)

// CorrectionLogger records user category corrections for merchant learning.
type CorrectionLogger interface {
	LogCorrection(ctx context.Context, tx *transaction.Transaction) error
}

type Handler struct {
	svc      *transaction.Service
	exporter *export.Service
	learner  CorrectionLogger
	cache    *cache.Cache
	logger   *slog.Logger
}

func NewHandler(svc *transaction.Service, exporter *export.Service, learner CorrectionLogger, c *cache.Cache, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, exporter: exporter, learner: learner, cache: c, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/export", h.exportCSV)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
	Amount      int64             `json:"amount"`
	Type        transaction.Type  `json:"type"`
	Category    category.Category `json:"category"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	Date        time.Time         `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cat := req.Category
	if cat == "" {
		cat = category.Classify(req.Description)
	}

	currency := req.Currency
	if currency == "" {
		currency = "RUB"
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    cat,
		Description: req.Description,
		Currency:    currency,
		Date:        req.Date,
		Source:      transaction.SourceManual,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.invalidateReports(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	txs, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(listResponse{
		Items: toResponseList(txs),
		Total: total,
	}); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.CSV(r.Context(), parseFilter(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write csv", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	h.invalidateReports(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	Description *string            `json:"description,omitempty"`
	Amount      *int64             `json:"amount,omitempty"`
	Type        *transaction.Type  `json:"type,omitempty"`
	Category    *category.Category `json:"category,omitempty"`
	Date        *time.Time         `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.Description != nil {
		tx.Description = *req.Description
	}

	if req.Amount != nil {
		tx.Amount = *req.Amount
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}

	categoryChanged := req.Category != nil && *req.Category != tx.Category
	if req.Category != nil {
		tx.Category = category.Normalize(*req.Category)
	}

	if req.Date != nil {
		tx.Date = *req.Date
	}

	if err := h.svc.Update(r.Context(), tx); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// A category override against the recognizer's suggestion feeds the
	// merchant learner.
	if categoryChanged {
		if err := h.learner.LogCorrection(r.Context(), tx); err != nil {
			h.logger.Warn("failed to log category correction", "id", tx.ID, "error", err)
		}
	}

	h.invalidateReports(r.Context())

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) invalidateReports(ctx context.Context) {
	if err := h.cache.InvalidatePrefix(ctx, report.CachePrefix); err != nil {
		h.logger.Warn("failed to invalidate report cache", "error", err)
	}
}

func parseFilter(r *http.Request) transaction.ListFilter {
	q := r.URL.Query()
	filter := transaction.ListFilter{Search: q.Get("search")}

	if s := q.Get("category"); s != "" {
		cat := category.Category(s)
		filter.Category = &cat
	}

	if s := q.Get("type"); s != "" {
		txType := transaction.Type(s)
		filter.Type = &txType
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	if s := q.Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	return filter
}
