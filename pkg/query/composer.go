// Package query composes and runs the multi-document reads of the gateway.
package query

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/logger"
	"github.com/adfharrison1/docgate/pkg/repository"
)

// JoinResult is one customer and the products that resolved, both read in
// the same statement. Customer is nil when the customer id did not resolve.
type JoinResult struct {
	Customer domain.Document
	Products []domain.Document
}

// Composer runs composed statements on the shared session.
type Composer struct {
	sessions repository.SessionProvider
}

// NewComposer creates a Composer reading sessions from sessions.
func NewComposer(sessions repository.SessionProvider) *Composer {
	return &Composer{sessions: sessions}
}

// ListByType returns every document of docType with its id. The order is
// unspecified and an empty result is not an error.
func (c *Composer) ListByType(ctx context.Context, docType string) ([]domain.Document, error) {
	rows, err := c.run(ctx, "list by type", ByType(docType))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchJoinedByKeys resolves a customer and a set of products in one round
// trip. Product ids that do not exist are omitted from the result.
func (c *Composer) FetchJoinedByKeys(ctx context.Context, customerID string, productIDs []string) (JoinResult, error) {
	rows, err := c.run(ctx, "fetch joined", JoinByKeys(customerID, productIDs))
	if err != nil {
		return JoinResult{}, err
	}

	result := JoinResult{Products: []domain.Document{}}
	if len(rows) == 0 {
		return result, nil
	}
	row := rows[0]
	if customer, ok := domain.AsDocument(row[domain.FieldCustomer]); ok {
		result.Customer = customer
	}
	result.Products = domain.AsDocuments(row[domain.FieldProducts])
	return result, nil
}

func (c *Composer) run(ctx context.Context, op string, stmt domain.Statement) ([]domain.Document, error) {
	session, err := c.sessions.EnsureConnected(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrConnectionPending) {
			return nil, err
		}
		return nil, domain.NewStoreError(op, err)
	}

	rows, err := session.Query(ctx, stmt)
	if err != nil {
		logger.FromContext(ctx).Error("Query failed", zap.String("op", op), zap.Error(err))
		return nil, domain.NewStoreError(op, err)
	}
	if rows == nil {
		rows = []domain.Document{}
	}
	return rows, nil
}
