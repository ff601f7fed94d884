package budget

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/budget"
	"github.com/ddanshin/kopilka/internal/category"
)

type Handler struct {
	svc    *budget.Service
	logger *slog.Logger
}

func NewHandler(svc *budget.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.set)
	r.Get("/", h.list)
	r.Get("/status", h.statuses)
	r.Delete("/{id}", h.delete)
}

type setBudgetRequest struct {
	Category   category.Category `json:"category"`
	LimitCents int64             `json:"limit_cents"`
	Period     budget.Period     `json:"period"`
}

type budgetResponse struct {
	ID         uuid.UUID         `json:"id"`
	Category   category.Category `json:"category"`
	LimitCents int64             `json:"limit_cents"`
	Period     budget.Period     `json:"period"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
}

type statusResponse struct {
	budgetResponse

	SpentCents     int64   `json:"spent_cents"`
	RemainingCents int64   `json:"remaining_cents"`
	Percentage     float64 `json:"percentage"`
	Exceeded       bool    `json:"exceeded"`
}

func toResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		Category:   b.Category,
		LimitCents: b.LimitCents,
		Period:     b.Period,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Set(r.Context(), budget.SetParams{
		Category:   req.Category,
		LimitCents: req.LimitCents,
		Period:     req.Period,
	})
	if err != nil {
		if errors.Is(err, budget.ErrInvalidLimit) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(b)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		resp[i] = toResponse(b)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) statuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.Statuses(r.Context(), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]statusResponse, len(statuses))
	for i, s := range statuses {
		resp[i] = statusResponse{
			budgetResponse: toResponse(s.Budget),
			SpentCents:     s.SpentCents,
			RemainingCents: s.RemainingCents,
			Percentage:     s.Percentage,
			Exceeded:       s.Exceeded,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
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
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
