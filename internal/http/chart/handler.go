package chart

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ddanshin/kopilka/internal/cache"
	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/chart"
	"github.com/ddanshin/kopilka/internal/learning"
	"github.com/ddanshin/kopilka/internal/period"
	"github.com/ddanshin/kopilka/internal/report"
	"github.com/ddanshin/kopilka/internal/transaction"
)

type Handler struct {
	transactions *transaction.Service
	learner      *learning.Service
	cache        *cache.Cache
	logger       *slog.Logger
}

func NewHandler(transactions *transaction.Service, learner *learning.Service, c *cache.Cache, logger *slog.Logger) *Handler {
	return &Handler{transactions: transactions, learner: learner, cache: c, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/synthesize", h.synthesize)
	r.Post("/commit", h.commit)
}

type synthesizeRequest struct {
	Chart    ChartDTO `json:"chart"`
	Selected []int    `json:"selected"`
	// Optional overrides for the resolved period, date-only ISO format.
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type draftResponse struct {
	AmountCents int64             `json:"amount_cents"`
	Description string            `json:"description"`
	Category    category.Category `json:"category"`
	Color       string            `json:"color,omitempty"`
	Date        time.Time         `json:"date"`
	Currency    string            `json:"currency"`
	RawText     string            `json:"raw_text,omitempty"`
}

type synthesizeResponse struct {
	Drafts      []draftResponse `json:"drafts"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	PeriodKind  period.Kind     `json:"period_kind"`
}

// synthesize expands selected chart categories into transaction drafts for
// review. Nothing is persisted.
func (h *Handler) synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c := FromDTO(req.Chart)
	p := c.ResolvePeriod()

	// User overrides adjust the window but keep the resolved granularity.
	if t, ok := parseDay(req.StartDate); ok {
		p.Start = t
	}

	if t, ok := parseDay(req.EndDate); ok {
		p.End = t
	}

	if p.End.Before(p.Start) {
		p.Start, p.End = p.End, p.Start
	}

	drafts := chart.Synthesize(c, req.Selected, p, h.learner.Classifier(r.Context()))

	resp := synthesizeResponse{
		Drafts:      make([]draftResponse, 0, len(drafts)),
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
		PeriodKind:  p.Kind,
	}

	for _, d := range drafts {
		dr := draftResponse{
			AmountCents: transaction.CentsFromDecimal(d.Amount),
			Description: d.Description,
			Category:    d.Category,
			Date:        d.Date,
			Currency:    d.Currency,
			RawText:     d.RawText,
		}
		if d.Category == category.Other {
			// Color by the source label so all installments of one slice
			// match the color the chart response gave it.
			dr.Color = category.Color(d.Label)
		}

		resp.Drafts = append(resp.Drafts, dr)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

type commitRequest struct {
	Drafts []draftResponse `json:"drafts"`
}

type commitResponse struct {
	Created int `json:"created"`
}

// commit persists reviewed drafts as real transactions.
func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Drafts) == 0 {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(commitResponse{}); err != nil {
			h.logger.Error("failed to encode response", "error", err)
		}

		return
	}

	params := make([]transaction.CreateParams, len(req.Drafts))
	for i, d := range req.Drafts {
		currency := d.Currency
		if currency == "" {
			currency = chart.DefaultCurrency
		}

		params[i] = transaction.CreateParams{
			Amount:      d.AmountCents,
			Type:        transaction.TypeExpense,
			Category:    d.Category,
			Description: d.Description,
			Currency:    currency,
			Date:        d.Date,
			Source:      transaction.SourceChart,
			RawText:     d.RawText,
		}
	}

	txs, err := h.transactions.CreateBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.cache.InvalidatePrefix(r.Context(), report.CachePrefix); err != nil {
		h.logger.Warn("failed to invalidate report cache", "error", err)
	}

	h.logger.Info("committed chart drafts", "count", len(txs))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(commitResponse{Created: len(txs)}); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}

	return t.UTC(), true
}
