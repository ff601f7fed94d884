package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ddanshin/kopilka/internal/http/budget"
	"github.com/ddanshin/kopilka/internal/http/chart"
	"github.com/ddanshin/kopilka/internal/http/report"
	"github.com/ddanshin/kopilka/internal/http/transaction"
	"github.com/ddanshin/kopilka/internal/http/upload"
)

func New(
	transactionsV1 *transaction.Handler,
	budgetsV1 *budget.Handler,
	reportsV1 *report.Handler,
	uploadV1 *upload.Handler,
	chartsV1 *chart.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", transactionsV1.Routes)

		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			budgetsV1.Routes(r)
		})

		r.Route("/reports", reportsV1.Routes)

		r.Route("/upload", uploadV1.Routes)

		r.Route("/charts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			chartsV1.Routes(r)
		})
	})

	return router
}
