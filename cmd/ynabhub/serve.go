package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpsvr "github.com/toolhub/ynabhub/internal/http"
	"github.com/toolhub/ynabhub/internal/logging"
	mcpsvr "github.com/toolhub/ynabhub/internal/mcp"
)

const shutdownTimeout = 15 * time.Second

var errNothingToServe = errors.New("nothing to serve: enable YNABHUB_MCP_STDIO, YNABHUB_MCP_LISTEN or YNABHUB_HTTP_LISTEN")

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio and/or TCP) and the HTTP surface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.MCPStdio && cfg.MCPListen == "" && cfg.HTTPListen == "" {
				return errNothingToServe
			}

			// stdout carries the MCP stream in stdio mode.
			logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			logger.Info("effective config",
				"profile", cfg.Profile,
				"read_only", cfg.ReadOnly,
				"tool_allowlist", cfg.ToolAllowlist,
				"mcp_stdio", cfg.MCPStdio,
				"mcp_listen", cfg.MCPListen,
				"http_listen", cfg.HTTPListen,
				"journal", cfg.DatabaseURL != "",
				"events", cfg.AMQPURL != "",
				"tracing", cfg.OTLPEndpoint != "",
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := a.Close(closeCtx); err != nil {
					logger.Warn("close failed", "err", err)
				}
			}()

			g, gctx := errgroup.WithContext(ctx)
			var shutdowns []func(context.Context) error

			if cfg.HTTPListen != "" {
				var journal httpsvr.JournalReader
				if a.database != nil {
					journal = a.database
				}
				hs := httpsvr.NewServer(cfg.HTTPListen, a.registry, journal,
					logging.WithComponent(logger, logging.ComponentHTTP),
					httpsvr.BuildInfo{Version: version, GitCommit: gitCommit, BuildTime: buildTime})
				g.Go(hs.ListenAndServe)
				shutdowns = append(shutdowns, hs.Shutdown)
			}

			mcpLogger := logging.WithComponent(logger, logging.ComponentMCP)
			if cfg.MCPListen != "" {
				ms := mcpsvr.NewServer(cfg.MCPListen, a.registry, version, mcpLogger)
				g.Go(ms.ListenAndServe)
				shutdowns = append(shutdowns, ms.Shutdown)
			}

			if cfg.MCPStdio {
				stdio := mcpsvr.NewServer("", a.registry, version, mcpLogger)
				g.Go(func() error {
					// The host closing stdin ends the whole process.
					defer stop()
					err := stdio.Serve(gctx, os.Stdin, os.Stdout)
					logger.Info("mcp stdio closed")
					return err
				})
			}

			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				for _, shutdown := range shutdowns {
					if err := shutdown(shutdownCtx); err != nil {
						logger.Warn("shutdown failed", "err", err)
					}
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				logger.Error("server error", "err", err)
				return err
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}
