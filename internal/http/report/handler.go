package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ddanshin/kopilka/internal/report"
)

type Handler struct {
	svc    *report.Service
	logger *slog.Logger
}

func NewHandler(svc *report.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/monthly", h.monthly)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	year := 0

	if s := r.URL.Query().Get("year"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}

		year = n
	}

	reports, err := h.svc.MonthlyReports(r.Context(), year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if reports == nil {
		reports = []*report.Monthly{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(reports); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
