// Package config loads gateway configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend drivers.
const (
	DriverCouchbase = "couchbase"
	DriverEmbedded  = "embedded"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Cluster  ClusterConfig
	Embedded EmbeddedConfig
	Log      LogConfig
	HTTP     HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// ClusterConfig holds the document backend connection settings
type ClusterConfig struct {
	Driver         string
	Host           string
	Username       string
	Password       string
	Bucket         string
	ConnectTimeout time.Duration
	RetryDelay     time.Duration
	MaxAttempts    int // 0 retries forever
}

// EmbeddedConfig holds settings for the in-process backend
type EmbeddedConfig struct {
	DataFile     string
	SaveInterval time.Duration // 0 saves only on shutdown
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	RequestTimeout   time.Duration // 0 leaves requests unbounded
	MaxBodySize      int64
	CORSAllowOrigins []string
}

// legacyEnv maps config keys to the environment variables used by earlier
// deployments of the gateway.
var legacyEnv = map[string]string{
	"cluster.host":     "COUCHBASE_HOST",
	"cluster.username": "COUCHBASE_APPLICATION_USER",
	"cluster.password": "COUCHBASE_APPLICATION_PASSWORD",
	"cluster.bucket":   "COUCHBASE_BUCKET",
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DOCGATE_ prefix (e.g., DOCGATE_CLUSTER_PASSWORD)
// 2. Legacy COUCHBASE_* variables
// 3. docgate.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("docgate")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/docgate")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DOCGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "DOCGATE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Cluster: ClusterConfig{
			Driver:         v.GetString("cluster.driver"),
			Host:           v.GetString("cluster.host"),
			Username:       v.GetString("cluster.username"),
			Password:       v.GetString("cluster.password"),
			Bucket:         v.GetString("cluster.bucket"),
			ConnectTimeout: v.GetDuration("cluster.connect_timeout"),
			RetryDelay:     v.GetDuration("cluster.retry_delay"),
			MaxAttempts:    v.GetInt("cluster.max_attempts"),
		},
		Embedded: EmbeddedConfig{
			DataFile:     v.GetString("embedded.data_file"),
			SaveInterval: v.GetDuration("embedded.save_interval"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			RequestTimeout:   v.GetDuration("http.request_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "docgate"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}
	if cfg.Cluster.Driver == "" {
		cfg.Cluster.Driver = DriverCouchbase
	}
	if cfg.Cluster.ConnectTimeout == 0 {
		cfg.Cluster.ConnectTimeout = 10 * time.Second
	}
	if cfg.Cluster.RetryDelay == 0 {
		cfg.Cluster.RetryDelay = 5 * time.Second
	}
	if cfg.Embedded.DataFile == "" {
		cfg.Embedded.DataFile = "docgate.dgsn"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
}

// validate checks presence of the settings the selected driver needs
func (c *Config) validate() error {
	switch c.Cluster.Driver {
	case DriverCouchbase:
		missing := []string{}
		if c.Cluster.Host == "" {
			missing = append(missing, "cluster.host")
		}
		if c.Cluster.Username == "" {
			missing = append(missing, "cluster.username")
		}
		if c.Cluster.Password == "" {
			missing = append(missing, "cluster.password")
		}
		if c.Cluster.Bucket == "" {
			missing = append(missing, "cluster.bucket")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
		}
	case DriverEmbedded:
		if c.Cluster.Bucket == "" {
			return fmt.Errorf("missing required settings: cluster.bucket")
		}
	default:
		return fmt.Errorf("unknown cluster.driver %q (supported: %s, %s)", c.Cluster.Driver, DriverCouchbase, DriverEmbedded)
	}

	if c.Cluster.RetryDelay < 0 {
		return fmt.Errorf("cluster.retry_delay cannot be negative")
	}
	if c.Cluster.MaxAttempts < 0 {
		return fmt.Errorf("cluster.max_attempts cannot be negative")
	}
	if c.HTTP.RequestTimeout < 0 {
		return fmt.Errorf("http.request_timeout cannot be negative")
	}
	return nil
}

// ConnectionString returns the cluster connection string for the Couchbase SDK
func (c *ClusterConfig) ConnectionString() string {
	if strings.Contains(c.Host, "://") {
		return c.Host
	}
	return "couchbase://" + c.Host
}
