/**
 * @description
 * This file sets up the HTTP router for the transaction-service using the
 * go-chi/chi router. It applies middleware for logging, panic recovery,
 * timeouts, and CORS, and maps the routes to their handler functions.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the transaction-service
// routes.
func NewRouter(h *TransactionHandlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Transaction service is running"))
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.CreateTransactionHandler)
		r.Get("/", h.ListTransactionsHandler)
		r.Get("/{transactionId}", h.GetTransactionHandler)
	})

	return r
}
