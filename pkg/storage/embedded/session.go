package embedded

import (
	"context"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Ensure Session implements domain.Session
var _ domain.Session = (*Session)(nil)

// Session exposes an Engine through the backend session contract.
type Session struct {
	engine *Engine
}

// Dialer opens sessions on one engine. Dialing opens the engine, which
// loads its snapshot; a corrupt snapshot makes the dial fail.
type Dialer struct {
	engine *Engine
}

// NewDialer returns a Dialer for engine.
func NewDialer(engine *Engine) *Dialer {
	return &Dialer{engine: engine}
}

// Dial opens the engine and returns a session on it.
func (d *Dialer) Dial(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.engine.Open(); err != nil {
		return nil, err
	}
	return &Session{engine: d.engine}, nil
}

// Insert implements domain.Session
func (s *Session) Insert(ctx context.Context, id string, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.engine.Insert(id, doc)
}

// Get implements domain.Session
func (s *Session) Get(ctx context.Context, id string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.Get(id)
}

// ArrayAppend implements domain.Session
func (s *Session) ArrayAppend(ctx context.Context, id, path string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.engine.ArrayAppend(id, path, value)
}

// LookupArray implements domain.Session
func (s *Session) LookupArray(ctx context.Context, id, path string) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.LookupArray(id, path)
}

// Query implements domain.Session
func (s *Session) Query(ctx context.Context, stmt domain.Statement) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.Execute(stmt)
}

// EnsurePrimaryIndex implements domain.Session
func (s *Session) EnsurePrimaryIndex(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.engine.CreatePrimaryIndex()
	return nil
}

// Close closes the underlying engine.
func (s *Session) Close() error {
	return s.engine.Close()
}
