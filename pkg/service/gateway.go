// Package service implements the gateway operations exposed by the HTTP API.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/logger"
	"github.com/adfharrison1/docgate/pkg/query"
)

// Documents is the single-document store used by the gateway.
// *repository.Repository implements it.
type Documents interface {
	Insert(ctx context.Context, docType string, doc domain.Document) (domain.Document, error)
	GetByID(ctx context.Context, id string) (domain.Document, error)
	AppendSubArray(ctx context.Context, id, field string, element interface{}) (interface{}, error)
	GetSubArray(ctx context.Context, id, field string) ([]interface{}, error)
}

// Queries runs the multi-document reads. *query.Composer implements it.
type Queries interface {
	ListByType(ctx context.Context, docType string) ([]domain.Document, error)
	FetchJoinedByKeys(ctx context.Context, customerID string, productIDs []string) (query.JoinResult, error)
}

// Gateway is the set of operations offered on customers, products and
// receipts.
type Gateway struct {
	docs    Documents
	queries Queries
}

// NewGateway creates a Gateway.
func NewGateway(docs Documents, queries Queries) *Gateway {
	return &Gateway{docs: docs, queries: queries}
}

// CreateCustomer stores a new customer.
func (g *Gateway) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Document, error) {
	return g.create(ctx, domain.TypeCustomer, c.Document())
}

// AddCreditCard appends a card to the customer's creditcards and returns the
// appended element.
func (g *Gateway) AddCreditCard(ctx context.Context, customerID string, card domain.CreditCard) (interface{}, error) {
	if customerID == "" {
		return nil, domain.NewValidationError("id", "customer id is required")
	}
	return g.docs.AppendSubArray(ctx, customerID, domain.FieldCreditCards, card.Value())
}

// GetCustomer returns the customer stored under id.
func (g *Gateway) GetCustomer(ctx context.Context, id string) (domain.Document, error) {
	return g.getTyped(ctx, domain.TypeCustomer, id)
}

// ListCreditCards returns the customer's credit cards in append order.
func (g *Gateway) ListCreditCards(ctx context.Context, customerID string) ([]interface{}, error) {
	return g.docs.GetSubArray(ctx, customerID, domain.FieldCreditCards)
}

// ListCustomers returns every customer.
func (g *Gateway) ListCustomers(ctx context.Context) ([]domain.Document, error) {
	return g.queries.ListByType(ctx, domain.TypeCustomer)
}

// CreateProduct stores a new product.
func (g *Gateway) CreateProduct(ctx context.Context, p domain.Product) (domain.Document, error) {
	return g.create(ctx, domain.TypeProduct, p.Document())
}

// GetProduct returns the product stored under id.
func (g *Gateway) GetProduct(ctx context.Context, id string) (domain.Document, error) {
	return g.getTyped(ctx, domain.TypeProduct, id)
}

// ListProducts returns every product.
func (g *Gateway) ListProducts(ctx context.Context) ([]domain.Document, error) {
	return g.queries.ListByType(ctx, domain.TypeProduct)
}

// CreateReceipt joins the customer with the requested products in one read
// and stores the result as a new receipt. Product ids that do not resolve
// are left out. A customer id that does not resolve fails with a
// ValidationError and nothing is written.
func (g *Gateway) CreateReceipt(ctx context.Context, customerID string, productIDs []string) (domain.Document, error) {
	if customerID == "" {
		return nil, domain.NewValidationError("customerid", "customer id is required")
	}

	joined, err := g.queries.FetchJoinedByKeys(ctx, customerID, productIDs)
	if err != nil {
		return nil, err
	}
	if joined.Customer == nil {
		return nil, domain.NewValidationError("customerid", fmt.Sprintf("customer %s does not exist", customerID))
	}
	if len(joined.Products) < len(productIDs) {
		logger.FromContext(ctx).Info("Receipt omits unresolved products",
			zap.String("customer", customerID),
			zap.Int("requested", len(productIDs)),
			zap.Int("resolved", len(joined.Products)))
	}

	return g.create(ctx, domain.TypeReceipt, domain.NewReceipt(joined.Customer, joined.Products))
}

// ListReceipts returns every receipt.
func (g *Gateway) ListReceipts(ctx context.Context) ([]domain.Document, error) {
	return g.queries.ListByType(ctx, domain.TypeReceipt)
}

func (g *Gateway) create(ctx context.Context, docType string, doc domain.Document) (domain.Document, error) {
	created, err := g.docs.Insert(ctx, docType, doc)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Document created",
		zap.String("type", docType), zap.String("id", created.ID()))
	return created, nil
}

// getTyped reads id and reports NotFound when it holds another type.
func (g *Gateway) getTyped(ctx context.Context, docType, id string) (domain.Document, error) {
	doc, err := g.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type() != docType {
		return nil, fmt.Errorf("%s %s: %w", docType, id, domain.ErrNotFound)
	}
	return doc, nil
}
