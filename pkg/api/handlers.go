package api

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Gateway is the set of operations the handlers call. *service.Gateway
// implements it.
type Gateway interface {
	CreateCustomer(ctx context.Context, c domain.Customer) (domain.Document, error)
	AddCreditCard(ctx context.Context, customerID string, card domain.CreditCard) (interface{}, error)
	GetCustomer(ctx context.Context, id string) (domain.Document, error)
	ListCreditCards(ctx context.Context, customerID string) ([]interface{}, error)
	ListCustomers(ctx context.Context) ([]domain.Document, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Document, error)
	GetProduct(ctx context.Context, id string) (domain.Document, error)
	ListProducts(ctx context.Context) ([]domain.Document, error)
	CreateReceipt(ctx context.Context, customerID string, productIDs []string) (domain.Document, error)
	ListReceipts(ctx context.Context) ([]domain.Document, error)
}

// StatusFunc reports the backend connection state for the health check.
type StatusFunc func() string

// Handler provides HTTP handlers for the gateway API
type Handler struct {
	gateway     Gateway
	validate    *validator.Validate
	status      StatusFunc
	maxBodySize int64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithStatus sets the backend state reported by the health check.
func WithStatus(status StatusFunc) HandlerOption {
	return func(h *Handler) {
		h.status = status
	}
}

// WithMaxBodySize limits request bodies to n bytes. Zero disables the limit.
func WithMaxBodySize(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxBodySize = n
	}
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(gateway Gateway, opts ...HandlerOption) *Handler {
	h := &Handler{
		gateway:  gateway,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func logFields(op string, fields ...zap.Field) []zap.Field {
	return append([]zap.Field{zap.String("op", op)}, fields...)
}
