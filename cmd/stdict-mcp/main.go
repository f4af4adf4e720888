package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stdict-mcp/internal/config"
	"stdict-mcp/internal/mcp"
	"stdict-mcp/internal/server"
	"stdict-mcp/internal/stdict"
	"stdict-mcp/internal/tools"
	"stdict-mcp/internal/tools/dictionary"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

type globalFlags struct {
	logLevel  string
	logFormat string
	envFile   string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "stdict-mcp",
		Short: "MCP server for the Standard Korean Dictionary (표준국어대사전)",
		Long: `stdict-mcp exposes the Standard Korean Dictionary Open API as two MCP tools:

  search   search.do, with every documented search parameter
  detail   view.do, by headword or target_code

Without a subcommand it speaks MCP on stdin/stdout. The API key is read from
STDICT_API_KEY, a .env file, or the desktop client's mcpServers.stdict.env.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(cmd.Context(), flags)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: console or json (overrides LOG_FORMAT)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load if present")

	stdioCmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP on stdin/stdout (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(cmd.Context(), flags)
		},
	}

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over streamable HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags, addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides MCP_ADDR)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration with the API key redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stdict-mcp v%s\n", version)
		},
	}

	rootCmd.AddCommand(stdioCmd, serveCmd, configCmd, versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(flags globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the root logger. It always writes to stderr: in stdio
// mode stdout carries the protocol.
func newLogger(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("version", version).Logger()
}

func setup(flags globalFlags) (*config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, zerolog.Nop(), fmt.Errorf("cannot start: %w", err)
		}
		return nil, zerolog.Nop(), err
	}

	logger := newLogger(cfg.Log, os.Stderr)
	if !cfg.KeyLooksValid() {
		logger.Warn().Msg("STDICT_API_KEY is not 32 hexadecimal characters; the dictionary API will likely reject it")
	}
	return cfg, logger, nil
}

func runStdio(ctx context.Context, flags globalFlags) error {
	cfg, logger, err := setup(flags)
	if err != nil {
		return err
	}

	client, err := stdict.NewClient(cfg.ClientConfig(version), stdict.WithLogger(logger))
	if err != nil {
		return err
	}

	registry := tools.NewRegistry()
	dictionary.Register(registry, client, cfg.Dictionary.APIKey)

	handler := mcp.NewHandler(registry, nil, mcp.Config{Version: version}, logger)
	if err := handler.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(ctx context.Context, flags globalFlags, addr string) error {
	cfg, logger, err := setup(flags)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	srv, err := server.New(cfg, version, logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
