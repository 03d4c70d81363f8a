// Package couchbase implements the document backend on a Couchbase cluster
// through the gocb SDK.
package couchbase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Ensure Session implements domain.Session
var _ domain.Session = (*Session)(nil)

// Config holds what is needed to open a bucket.
type Config struct {
	ConnectionString string
	Username         string
	Password         string
	Bucket           string
	ConnectTimeout   time.Duration
}

// Validate checks that every connection setting is present.
func (c Config) Validate() error {
	var missing []string
	if c.ConnectionString == "" {
		missing = append(missing, "connection string")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return fmt.Errorf("couchbase config missing %v", missing)
	}
	return nil
}

// Dialer opens authenticated sessions on one bucket.
type Dialer struct {
	cfg    Config
	logger *zap.Logger
}

// NewDialer returns a Dialer for cfg. A nil logger disables logging.
func NewDialer(cfg Config, logger *zap.Logger) (*Dialer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialer{cfg: cfg, logger: logger}, nil
}

// Dial connects to the cluster and waits until the bucket is ready.
func (d *Dialer) Dial(ctx context.Context) (domain.Session, error) {
	cluster, err := gocb.Connect(d.cfg.ConnectionString, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: d.cfg.Username,
			Password: d.cfg.Password,
		},
		TimeoutsConfig: gocb.TimeoutsConfig{
			ConnectTimeout: d.cfg.ConnectTimeout,
		},
	})
	if err != nil {
		return nil, translate("connect", err)
	}

	bucket := cluster.Bucket(d.cfg.Bucket)
	if err := bucket.WaitUntilReady(d.cfg.ConnectTimeout, &gocb.WaitUntilReadyOptions{Context: ctx}); err != nil {
		if cerr := cluster.Close(nil); cerr != nil {
			d.logger.Debug("Closing cluster after failed dial", zap.Error(cerr))
		}
		return nil, translate("wait until ready", err)
	}

	d.logger.Debug("Bucket ready", zap.String("bucket", d.cfg.Bucket))
	return &Session{
		cluster:    cluster,
		bucket:     d.cfg.Bucket,
		collection: bucket.DefaultCollection(),
	}, nil
}

// Session is an open bucket on a Couchbase cluster.
type Session struct {
	cluster    *gocb.Cluster
	bucket     string
	collection *gocb.Collection
}

// Insert implements domain.Session
func (s *Session) Insert(ctx context.Context, id string, doc domain.Document) error {
	_, err := s.collection.Insert(id, map[string]interface{}(doc.Payload()), &gocb.InsertOptions{Context: ctx})
	return translate("insert", err)
}

// Get implements domain.Session
func (s *Session) Get(ctx context.Context, id string) (domain.Document, error) {
	res, err := s.collection.Get(id, &gocb.GetOptions{Context: ctx})
	if err != nil {
		return nil, translate("get", err)
	}
	var doc map[string]interface{}
	if err := res.Content(&doc); err != nil {
		return nil, translate("decode", err)
	}
	if doc == nil {
		doc = make(map[string]interface{})
	}
	return domain.Document(doc), nil
}

// ArrayAppend implements domain.Session using a sub-document mutation, so
// the append is atomic on the server.
func (s *Session) ArrayAppend(ctx context.Context, id, path string, value interface{}) error {
	specs := []gocb.MutateInSpec{
		gocb.ArrayAppendSpec(path, value, &gocb.ArrayAppendSpecOptions{CreatePath: true}),
	}
	_, err := s.collection.MutateIn(id, specs, &gocb.MutateInOptions{Context: ctx})
	return translate("array append", err)
}

// LookupArray implements domain.Session
func (s *Session) LookupArray(ctx context.Context, id, path string) ([]interface{}, error) {
	specs := []gocb.LookupInSpec{gocb.GetSpec(path, nil)}
	res, err := s.collection.LookupIn(id, specs, &gocb.LookupInOptions{Context: ctx})
	if err != nil {
		return nil, translate("lookup", err)
	}
	var list []interface{}
	if err := res.ContentAt(0, &list); err != nil {
		return nil, translate("lookup", err)
	}
	if list == nil {
		list = []interface{}{}
	}
	return list, nil
}

// Query implements domain.Session
func (s *Session) Query(ctx context.Context, stmt domain.Statement) ([]domain.Document, error) {
	text, params, err := Render(s.bucket, stmt)
	if err != nil {
		return nil, err
	}

	rows, err := s.cluster.Query(text, &gocb.QueryOptions{
		NamedParameters: params,
		Context:         ctx,
	})
	if err != nil {
		return nil, translate("query", err)
	}

	docs := []domain.Document{}
	for rows.Next() {
		var row map[string]interface{}
		if err := rows.Row(&row); err != nil {
			_ = rows.Close()
			return nil, translate("query row", err)
		}
		docs = append(docs, domain.Document(row))
	}
	if err := rows.Err(); err != nil {
		return nil, translate("query", err)
	}
	if err := rows.Close(); err != nil {
		return nil, translate("query", err)
	}
	return docs, nil
}

// EnsurePrimaryIndex implements domain.Session. An existing index is not an error.
func (s *Session) EnsurePrimaryIndex(ctx context.Context) error {
	err := s.cluster.QueryIndexes().CreatePrimaryIndex(s.bucket, &gocb.CreatePrimaryQueryIndexOptions{
		IgnoreIfExists: true,
		Context:        ctx,
	})
	if errors.Is(err, gocb.ErrIndexExists) {
		return nil
	}
	return translate("create primary index", err)
}

// Close disconnects from the cluster.
func (s *Session) Close() error {
	return s.cluster.Close(nil)
}
