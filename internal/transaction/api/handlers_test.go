package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tonysanes/yape-challange/internal/transaction/app"
	"github.com/tonysanes/yape-challange/internal/transaction/domain"
	"github.com/tonysanes/yape-challange/internal/transaction/store"
)

type fakeRepository struct {
	rows map[string]*domain.Transaction
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[string]*domain.Transaction)}
}

func (f *fakeRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	tx.ID = int64(len(f.rows) + 1)
	clone := *tx
	f.rows[tx.TransactionID] = &clone
	return nil
}

func (f *fakeRepository) FindTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	tx, ok := f.rows[transactionID]
	if !ok {
		return nil, store.ErrTransactionNotFound
	}
	clone := *tx
	return &clone, nil
}

func (f *fakeRepository) FindAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	all := make([]domain.Transaction, 0, len(f.rows))
	for _, tx := range f.rows {
		all = append(all, *tx)
	}
	return all, nil
}

func (f *fakeRepository) UpdateTransactionStatus(ctx context.Context, transactionID, status string, updatedAt time.Time) (*domain.Transaction, error) {
	tx, ok := f.rows[transactionID]
	if !ok {
		return nil, store.ErrTransactionNotFound
	}
	tx.Status = status
	tx.UpdatedAt = updatedAt
	clone := *tx
	return &clone, nil
}

type fakePublisher struct {
	err error
}

func (f *fakePublisher) Publish(ctx context.Context, topic, key string, body interface{}) (int32, int64, error) {
	return 0, 0, f.err
}

type fakeLimiter struct {
	count      int
	retryAfter int
	err        error
}

func (f *fakeLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	return f.count, f.retryAfter, f.err
}

func newTestRouter(repo store.Repository, publisher app.EventPublisher) http.Handler {
	service := app.NewService(repo, publisher, "transaction-creation")
	return NewRouter(NewTransactionHandlers(service))
}

const validCreateBody = `{"accountExternalIdDebit":"acc-1","accountExternalIdCredit":"acc-2","transferTypeId":1,"value":120.50}`

func TestCreateTransactionEndpoint(t *testing.T) {
	router := newTestRouter(newFakeRepository(), &fakePublisher{})

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(validCreateBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if created.TransactionID == "" {
		t.Fatal("expected a transactionId in the response")
	}
	if created.Status != "PENDING" {
		t.Fatalf("expected PENDING, got %q", created.Status)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt, got %v vs %v", created.CreatedAt, created.UpdatedAt)
	}
}

func TestCreateTransactionEndpointRejectsInvalidJSON(t *testing.T) {
	router := newTestRouter(newFakeRepository(), &fakePublisher{})

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTransactionEndpointRejectsMissingFields(t *testing.T) {
	router := newTestRouter(newFakeRepository(), &fakePublisher{})

	body := `{"accountExternalIdCredit":"acc-2","transferTypeId":1,"value":10}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTransactionEndpointSurfacesDeliveryFailure(t *testing.T) {
	router := newTestRouter(newFakeRepository(), &fakePublisher{err: errors.New("broker unavailable")})

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(validCreateBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the event cannot be published, got %d", rec.Code)
	}
}

func TestListTransactionsEndpointEmpty(t *testing.T) {
	router := newTestRouter(newFakeRepository(), &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestGetTransactionEndpointNotFound(t *testing.T) {
	router := newTestRouter(newFakeRepository(), &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/transactions/unknown-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetTransactionEndpointReturnsStoredRecord(t *testing.T) {
	repo := newFakeRepository()
	router := newTestRouter(repo, &fakePublisher{})

	createReq := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(validCreateBody))
	createRec := httptest.NewRecorder()
	router.ServeHTTP(createRec, createReq)

	var created domain.Transaction
	if err := json.NewDecoder(createRec.Body).Decode(&created); err != nil {
		t.Fatalf("create response decode failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/transactions/"+created.TransactionID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fetched domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("get response decode failed: %v", err)
	}
	if fetched.TransactionID != created.TransactionID {
		t.Fatalf("expected %q, got %q", created.TransactionID, fetched.TransactionID)
	}
}

func TestCreateTransactionEndpointRateLimited(t *testing.T) {
	service := app.NewService(newFakeRepository(), &fakePublisher{}, "transaction-creation")
	handlers := NewTransactionHandlers(service)
	handlers.SetCreateRateLimiter(&fakeLimiter{count: 31, retryAfter: 42}, 30)
	router := NewRouter(handlers)

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(validCreateBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Fatalf("expected Retry-After 42, got %q", got)
	}
}

func TestCreateTransactionEndpointFailsOpenWhenLimiterErrors(t *testing.T) {
	service := app.NewService(newFakeRepository(), &fakePublisher{}, "transaction-creation")
	handlers := NewTransactionHandlers(service)
	handlers.SetCreateRateLimiter(&fakeLimiter{err: errors.New("redis down")}, 30)
	router := NewRouter(handlers)

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(validCreateBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected limiter outage to fail open with 201, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(newFakeRepository(), &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
