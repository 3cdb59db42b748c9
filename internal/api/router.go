/**
 * @description
 * HTTP router setup for the aggregator using go-chi/chi.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the finance routes.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(CredentialPropagation)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Aggregator service is healthy"))
	})

	r.Route("/api/v1/finance", func(r chi.Router) {
		r.Get("/pay/{userID}", h.handleGetPay)
		r.Get("/pay/{userID}/{payID}", h.handleGetPay)
		r.Post("/pay", h.handleSavePay)
		r.Post("/pay/{userID}/{payID}/{incomeID}", h.handleUpdatePay)
		r.Delete("/pay/{userID}/{payID}/{incomeID}", h.handleDeletePay)
		r.Get("/income/{userID}", h.handleGetIncome)
		r.Get("/income/{userID}/{incomeID}", h.handleGetIncome)
	})

	return r
}
