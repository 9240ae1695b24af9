package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/toolhub/ynabhub/internal/config"
	"github.com/toolhub/ynabhub/internal/core"
	"github.com/toolhub/ynabhub/internal/db"
	"github.com/toolhub/ynabhub/internal/events"
	"github.com/toolhub/ynabhub/internal/logging"
	"github.com/toolhub/ynabhub/internal/telemetry"
	"github.com/toolhub/ynabhub/internal/tools"
	"github.com/toolhub/ynabhub/internal/ynab"
)

// app holds everything a command needs to run tools. Optional parts are nil
// when their setting is empty.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *tools.Registry
	database  *db.DB
	publisher *events.Publisher
	tracing   *telemetry.Tracing
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	tracing, err := telemetry.NewTracing(ctx, telemetry.TracingConfig{
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.OTelSampleRate,
		ServiceName:    "ynabhub",
		ServiceVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}
	a.tracing = tracing

	client := ynab.NewClient(cfg.YNABToken,
		ynab.WithBaseURL(cfg.YNABBaseURL),
		ynab.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		ynab.WithTracerProvider(tracing.TracerProvider()),
	)

	var toolsetOpts []tools.ToolsetOption
	if cfg.AMQPURL != "" {
		pub, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logging.WithComponent(logger, logging.ComponentEvents))
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("event publisher init failed: %w", err)
		}
		a.publisher = pub
		toolsetOpts = append(toolsetOpts, tools.WithPublisher(pub))
	}

	registryOpts := []tools.RegistryOption{
		tools.WithPolicy(core.NewPolicy(cfg.ToolAllowlist, cfg.ReadOnly)),
		tools.WithLogger(logger),
	}
	if cfg.DatabaseURL != "" {
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.database = database
		logger.Info("tool-call journal enabled", "dialect", database.Dialect())
		audit := core.NewAuditService(database, logging.WithComponent(logger, logging.ComponentAudit))
		registryOpts = append(registryOpts, tools.WithObserver(audit))
	}

	toolset := tools.NewToolset(client, logging.WithComponent(logger, logging.ComponentTools), toolsetOpts...)
	a.registry = tools.NewRegistry(toolset, registryOpts...)
	return a, nil
}

// Close releases whatever newApp opened.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.database != nil {
		errs = append(errs, a.database.Close())
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
