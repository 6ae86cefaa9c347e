// Package api wires the HTTP surface over the ledger and the advisory
// gateway.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/portfolio-tracker/internal/api/handlers"
	"github.com/dvloznov/portfolio-tracker/internal/api/middleware"
)

// NewRouter assembles the route tree with the standard middleware chain.
func NewRouter(ledgerH *handlers.LedgerHandler, advisorH *handlers.AdvisorHandler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", ledgerH.RecordTransaction)
		r.Put("/transactions/{id}", ledgerH.EditTransaction)
		r.Delete("/transactions/{id}", ledgerH.DeleteTransaction)
		r.Get("/history", ledgerH.ListHistory)

		r.Put("/valuations/{category}", ledgerH.SetValuation)
		r.Put("/target", ledgerH.SetTarget)
		r.Get("/report", ledgerH.GetReport)

		r.Post("/advisor/ask", advisorH.Ask)
		r.Post("/advisor/reset", advisorH.Reset)
	})

	return r
}
