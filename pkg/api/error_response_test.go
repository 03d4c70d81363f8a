package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// stubGateway fails every operation with err.
type stubGateway struct {
	err error
}

func (s stubGateway) CreateCustomer(context.Context, domain.Customer) (domain.Document, error) {
	return nil, s.err
}
func (s stubGateway) AddCreditCard(context.Context, string, domain.CreditCard) (interface{}, error) {
	return nil, s.err
}
func (s stubGateway) GetCustomer(context.Context, string) (domain.Document, error) {
	return nil, s.err
}
func (s stubGateway) ListCreditCards(context.Context, string) ([]interface{}, error) {
	return nil, s.err
}
func (s stubGateway) ListCustomers(context.Context) ([]domain.Document, error) {
	return nil, s.err
}
func (s stubGateway) CreateProduct(context.Context, domain.Product) (domain.Document, error) {
	return nil, s.err
}
func (s stubGateway) GetProduct(context.Context, string) (domain.Document, error) {
	return nil, s.err
}
func (s stubGateway) ListProducts(context.Context) ([]domain.Document, error) {
	return nil, s.err
}
func (s stubGateway) CreateReceipt(context.Context, string, []string) (domain.Document, error) {
	return nil, s.err
}
func (s stubGateway) ListReceipts(context.Context) ([]domain.Document, error) {
	return nil, s.err
}

type codedErr struct{}

func (codedErr) Error() string { return "document already exists" }
func (codedErr) Code() string  { return "document_exists" }

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("get: %w", domain.ErrNotFound), http.StatusNotFound, "get: not found"},
		{"validation", domain.NewValidationError("customerid", "customer x does not exist"), http.StatusBadRequest, "customerid: customer x does not exist"},
		{"pending", fmt.Errorf("%w: %w", domain.ErrConnectionPending, context.DeadlineExceeded), http.StatusServiceUnavailable, "backend connection pending"},
		{"store", domain.NewStoreError("insert", codedErr{}), http.StatusInternalServerError, "list customers failed"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "list customers failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, stubGateway{err: tt.err})

			w := doRequest(t, router, "GET", "/customers", "")
			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, http.StatusText(tt.status), resp.Error)
			assert.Equal(t, tt.message, resp.Message)
			assert.NotContains(t, w.Body.String(), "document")
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}

func TestWriteDomainError_RetryAfter(t *testing.T) {
	router := newTestRouter(t, stubGateway{err: domain.ErrConnectionPending})

	w := doRequest(t, router, "GET", "/customer/c1", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
}

func TestMethodNotAllowed(t *testing.T) {
	w := doRequest(t, newTestRouter(t, stubGateway{}), "DELETE", "/customer/c1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
