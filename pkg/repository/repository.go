// Package repository implements the document operations of the gateway on
// top of the session owned by the connection manager.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/ids"
	"github.com/adfharrison1/docgate/pkg/logger"
)

// SessionProvider hands out the shared backend session, connecting first
// when needed. *connection.Manager implements it.
type SessionProvider interface {
	EnsureConnected(ctx context.Context) (domain.Session, error)
}

// Option configures a Repository.
type Option func(*Repository)

// WithIDGenerator replaces the key generator.
func WithIDGenerator(gen ids.Generator) Option {
	return func(r *Repository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// Repository stores and reads single documents.
type Repository struct {
	sessions SessionProvider
	newID    ids.Generator
}

// New creates a Repository reading sessions from sessions.
func New(sessions SessionProvider, opts ...Option) *Repository {
	r := &Repository{
		sessions: sessions,
		newID:    ids.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores a copy of doc tagged with docType under a new key and
// returns the stored document with its id. A caller supplied id is ignored.
func (r *Repository) Insert(ctx context.Context, docType string, doc domain.Document) (domain.Document, error) {
	session, err := r.sessions.EnsureConnected(ctx)
	if err != nil {
		return nil, sessionError("insert", err)
	}

	stored := doc.Payload()
	stored[domain.FieldType] = docType
	id := r.newID()

	if err := session.Insert(ctx, id, stored); err != nil {
		logger.FromContext(ctx).Error("Insert failed",
			zap.String("type", docType), zap.String("id", id), zap.Error(err))
		return nil, domain.NewStoreError("insert", err)
	}
	return stored.WithID(id), nil
}

// GetByID returns the document stored under id with the id injected.
func (r *Repository) GetByID(ctx context.Context, id string) (domain.Document, error) {
	session, err := r.sessions.EnsureConnected(ctx)
	if err != nil {
		return nil, sessionError("get", err)
	}

	doc, err := session.Get(ctx, id)
	if err != nil {
		return nil, backendError("get", err)
	}
	return doc.WithID(id), nil
}

// AppendSubArray appends element to the array at field of document id,
// creating the array when absent, and returns the appended element. The
// append is atomic on the backend.
func (r *Repository) AppendSubArray(ctx context.Context, id, field string, element interface{}) (interface{}, error) {
	session, err := r.sessions.EnsureConnected(ctx)
	if err != nil {
		return nil, sessionError("append", err)
	}

	if err := session.ArrayAppend(ctx, id, field, element); err != nil {
		return nil, backendError("append", err)
	}
	return element, nil
}

// GetSubArray reads the array at field of document id.
func (r *Repository) GetSubArray(ctx context.Context, id, field string) ([]interface{}, error) {
	session, err := r.sessions.EnsureConnected(ctx)
	if err != nil {
		return nil, sessionError("lookup", err)
	}

	list, err := session.LookupArray(ctx, id, field)
	if err != nil {
		return nil, backendError("lookup", err)
	}
	return list, nil
}

// backendError keeps not-found failures recognisable and wraps the rest.
func backendError(op string, err error) error {
	if domain.IsNotFound(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return domain.NewStoreError(op, err)
}

// sessionError passes a pending connection through to the caller.
func sessionError(op string, err error) error {
	if errors.Is(err, domain.ErrConnectionPending) {
		return err
	}
	return domain.NewStoreError(op, err)
}
