/**
 * @description
 * This file contains the HTTP handlers for the transaction-service's API
 * endpoints. Handlers parse requests, call the application service, and map
 * its outcomes to status codes: 400 for validation failures, 404 for unknown
 * transactions, 429 when rate limited, 500 for store or broker failures.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/transaction/app, internal/transaction/domain,
 *   internal/transaction/store.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tonysanes/yape-challange/internal/transaction/app"
	"github.com/tonysanes/yape-challange/internal/transaction/domain"
	"github.com/tonysanes/yape-challange/internal/transaction/store"
)

// TransactionHandlers holds the application service that handlers will use.
type TransactionHandlers struct {
	service              *app.Service
	limiter              app.RateLimiter
	createLimitPerMinute int
}

// NewTransactionHandlers creates a new instance of TransactionHandlers.
func NewTransactionHandlers(service *app.Service) *TransactionHandlers {
	return &TransactionHandlers{service: service}
}

// SetCreateRateLimiter enables throttling of POST /transactions. A nil
// limiter or a non-positive limit leaves creation unthrottled.
func (h *TransactionHandlers) SetCreateRateLimiter(limiter app.RateLimiter, perMinute int) {
	h.limiter = limiter
	h.createLimitPerMinute = perMinute
}

func (h *TransactionHandlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func (h *TransactionHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func clientSubject(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *TransactionHandlers) allowCreate(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil || h.createLimitPerMinute <= 0 {
		return true
	}
	count, retryAfter, err := h.limiter.ConsumeRateLimit(r.Context(), "transactions:create", clientSubject(r), h.createLimitPerMinute, time.Minute)
	if err != nil {
		// Fail open: a limiter outage must not take transaction creation down.
		log.Printf("level=warn component=api msg=\"rate limiter unavailable; allowing request\" err=%v", err)
		return true
	}
	if count > h.createLimitPerMinute {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.writeError(w, http.StatusTooManyRequests, "Too many transaction creations; slow down.")
		return false
	}
	return true
}

// CreateTransactionHandler handles POST /transactions.
func (h *TransactionHandlers) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	if !h.allowCreate(w, r) {
		return
	}

	var req domain.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_transaction outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.service.CreateTransaction(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			log.Printf("level=warn component=api endpoint=create_transaction outcome=reject reason=validation err=%v", err)
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=create_transaction outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to create transaction")
		return
	}

	h.writeJSON(w, http.StatusCreated, tx)
}

// ListTransactionsHandler handles GET /transactions.
func (h *TransactionHandlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.ListTransactions(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=list_transactions outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to list transactions")
		return
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// GetTransactionHandler handles GET /transactions/{transactionId}.
func (h *TransactionHandlers) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")

	tx, err := h.service.GetTransaction(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			h.writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_transaction outcome=failed transaction_id=%s err=%v", transactionID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to retrieve transaction")
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}
