package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/toolhub/ynabhub/internal/config"
	"github.com/toolhub/ynabhub/internal/logging"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ynabhub",
		Short:         "YNAB tools over MCP, HTTP and the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log one-shot commands at the configured level instead of warn")

	root.AddCommand(newServeCmd(opts), newVersionCmd())
	root.AddCommand(toolCommands(opts)...)
	return root
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// cliLogger keeps one-shot commands quiet unless --verbose is set.
func (o *rootOptions) cliLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.LogLevel
	if !o.verbose && logging.ParseLevel(level) < slog.LevelWarn {
		level = "warn"
	}
	return logging.New(level, cfg.LogFormat, w)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ynabhub %s (commit %s, built %s)\n",
				orUnknown(version), orUnknown(gitCommit), orUnknown(buildTime))
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
