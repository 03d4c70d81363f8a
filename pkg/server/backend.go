package server

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/config"
	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/storage/couchbase"
	"github.com/adfharrison1/docgate/pkg/storage/embedded"
)

// NewDialer builds the backend dialer selected by cfg.Driver.
func NewDialer(cfg config.Config, log *zap.Logger) (domain.Dialer, error) {
	switch cfg.Cluster.Driver {
	case config.DriverCouchbase:
		dialer, err := couchbase.NewDialer(couchbase.Config{
			ConnectionString: cfg.Cluster.ConnectionString(),
			Username:         cfg.Cluster.Username,
			Password:         cfg.Cluster.Password,
			Bucket:           cfg.Cluster.Bucket,
			ConnectTimeout:   cfg.Cluster.ConnectTimeout,
		}, log.Named("couchbase"))
		if err != nil {
			return nil, err
		}
		return dialer, nil
	case config.DriverEmbedded:
		options := []embedded.Option{
			embedded.WithLogger(log.Named("embedded")),
		}
		if cfg.Embedded.DataFile != "" {
			options = append(options, embedded.WithDataFile(cfg.Embedded.DataFile))
		}
		if cfg.Embedded.SaveInterval > 0 {
			options = append(options, embedded.WithBackgroundSave(cfg.Embedded.SaveInterval))
		}
		return embedded.NewDialer(embedded.NewEngine(cfg.Cluster.Bucket, options...)), nil
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Cluster.Driver)
	}
}
