package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/config"
	"github.com/adfharrison1/docgate/pkg/connection"
	"github.com/adfharrison1/docgate/pkg/logger"
	"github.com/adfharrison1/docgate/pkg/metrics"
	"github.com/adfharrison1/docgate/pkg/query"
	"github.com/adfharrison1/docgate/pkg/repository"
	"github.com/adfharrison1/docgate/pkg/server"
	"github.com/adfharrison1/docgate/pkg/service"
)

func main() {
	// Command line flags override the loaded configuration
	var (
		port     = flag.String("port", "", "Server port (overrides app.port)")
		driver   = flag.String("driver", "", "Backend driver: couchbase or embedded (overrides cluster.driver)")
		showHelp = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ndocgate serves customers, products and receipts from a Couchbase bucket.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfiguration is read from docgate.toml and DOCGATE_* environment variables.\n")
		fmt.Fprintf(os.Stderr, "COUCHBASE_HOST, COUCHBASE_APPLICATION_USER, COUCHBASE_APPLICATION_PASSWORD\n")
		fmt.Fprintf(os.Stderr, "and COUCHBASE_BUCKET are honoured as well.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                    # Couchbase from environment\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  DOCGATE_CLUSTER_BUCKET=dev %s -driver embedded   # Local in-process store\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *driver != "" {
		os.Setenv("DOCGATE_CLUSTER_DRIVER", *driver)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.App.Port = *port
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	dialer, err := server.NewDialer(*cfg, log)
	if err != nil {
		log.Fatal("Failed to configure backend", zap.Error(err))
	}

	mx := metrics.New()
	manager := connection.NewManager(dialer,
		connection.WithRetryPolicy(connection.RetryPolicy{
			Delay:       cfg.Cluster.RetryDelay,
			MaxAttempts: cfg.Cluster.MaxAttempts,
		}),
		connection.WithLogger(log.Named("connection")),
		connection.WithMetrics(mx),
	)

	gateway := service.NewGateway(repository.New(manager), query.NewComposer(manager))
	srv := server.NewServer(gateway, server.Config{
		Logger:           log,
		Metrics:          mx,
		RequestTimeout:   cfg.HTTP.RequestTimeout,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		Status:           func() string { return manager.State().String() },
	})

	// Connect in the background; requests arriving first join the same attempt
	go func() {
		if _, err := manager.EnsureConnected(context.Background()); err != nil && !errors.Is(err, connection.ErrClosed) {
			log.Error("Initial backend connection failed", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Starting docgate server",
			zap.String("addr", httpServer.Addr),
			zap.String("driver", cfg.Cluster.Driver),
			zap.String("bucket", cfg.Cluster.Bucket))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Closing the session also writes the embedded snapshot
	if err := manager.Close(); err != nil {
		log.Error("Failed to close backend session", zap.Error(err))
	}

	log.Info("Server exited")
}
