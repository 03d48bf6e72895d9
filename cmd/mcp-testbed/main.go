// mcp-testbed is a conformance-test endpoint for the Model Context Protocol:
// it answers line-delimited JSON-RPC 2.0 requests with correctly-shaped
// responses so client implementations can be exercised without a real tool
// backend.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mcp-testbed/internal/config"
	"mcp-testbed/internal/mcp/server"
	"mcp-testbed/internal/mcp/tools"
	"mcp-testbed/internal/repl"
	"mcp-testbed/internal/replay"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Startup failures must exit nonzero before any serving starts.
		log.SetOutput(os.Stderr)
		log.Fatalf("Error: %v", err)
	}
}

type rootFlags struct {
	configPath string
	transport  string
	host       string
	port       int
	strict     bool
	legacyIDs  bool
	disabled   []string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "mcp-testbed",
		Short:         "MCP conformance-test endpoint",
		Long:          "A known-good MCP server with a fixed five-tool catalog, used to exercise client implementations over line-delimited JSON-RPC 2.0.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().BoolVar(&flags.strict, "strict", false, "Validate tools/call arguments against each tool's input schema")
	root.PersistentFlags().BoolVar(&flags.legacyIDs, "legacy-ids", false, "Reproduce the reference's fixed response ids for initialize and tools/list")
	root.PersistentFlags().StringSliceVar(&flags.disabled, "disable", nil, "Builtin tools to hide from the catalog")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the endpoint over the configured transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
	serveCmd.Flags().StringVar(&flags.transport, "transport", "", "Transport type (stdio, tcp)")
	serveCmd.Flags().StringVar(&flags.host, "host", "", "Host for TCP transport")
	serveCmd.Flags().IntVar(&flags.port, "port", 0, "Port for TCP transport")

	replayCmd := &cobra.Command{
		Use:   "replay <scenario.yaml> [more scenarios...]",
		Short: "Replay conformance scenarios against an in-process endpoint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, flags, args)
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive console against an in-process endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, flags)
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for replay scenario files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := replay.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print name and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.Name, cfg.Version)
			return nil
		},
	}

	root.AddCommand(serveCmd, replayCmd, replCmd, schemaCmd, versionCmd)
	return root
}

// loadConfig resolves the unified config and applies flag overrides
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.configPath != "" {
		loaded, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.transport != "" {
		cfg.Server.Transport.Type = flags.transport
	}
	if flags.host != "" {
		cfg.Server.Transport.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Server.Transport.Port = flags.port
	}
	if flags.strict {
		cfg.Server.StrictArguments = true
	}
	if flags.legacyIDs {
		cfg.Server.LegacyIDs = true
	}
	if len(flags.disabled) > 0 {
		cfg.Server.Tools.Disabled = append(cfg.Server.Tools.Disabled, flags.disabled...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildEndpoint turns the unified config into a server config and a ready
// registry. Tool registration happens before any serving, so a broken schema
// refuses startup.
func buildEndpoint(flags *rootFlags) (*server.Config, *tools.Registry, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	serverCfg := server.NewConfigFromUnified(cfg)
	registry := tools.NewRegistry()
	if err := tools.RegisterBuiltin(registry, serverCfg.DisabledTools); err != nil {
		return nil, nil, fmt.Errorf("failed to register tools: %w", err)
	}
	registry.SetStrict(serverCfg.StrictArguments)
	return serverCfg, registry, nil
}

func runServe(cmd *cobra.Command, flags *rootFlags) error {
	serverCfg, registry, err := buildEndpoint(flags)
	if err != nil {
		return err
	}

	// Diagnostics go to stderr only; stdout belongs to the protocol.
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tm := server.NewTransportManager(serverCfg, registry, logger)
	if err := tm.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Printf("session ended, shutting down")
	return nil
}

func runReplay(cmd *cobra.Command, flags *rootFlags, paths []string) error {
	serverCfg, _, err := buildEndpoint(flags)
	if err != nil {
		return err
	}

	logger := log.New(cmd.ErrOrStderr(), "", 0)
	runner := replay.NewRunner(serverCfg, nil)
	out := cmd.OutOrStdout()

	failed := 0
	for _, path := range paths {
		sc, err := replay.LoadFile(path)
		if err != nil {
			return err
		}

		report, err := runner.Run(cmd.Context(), sc)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "=== %s\n", report.Scenario)
		for _, step := range report.Steps {
			if len(step.Failures) == 0 {
				fmt.Fprintf(out, "  ok   %s\n", step.Name)
				continue
			}
			fmt.Fprintf(out, "  FAIL %s\n", step.Name)
			for _, failure := range step.Failures {
				fmt.Fprintf(out, "       %s\n", failure)
			}
			if step.Response != nil {
				logger.Printf("response was: %s", step.Response)
			}
		}
		failed += report.FailureCount()
	}

	if failed > 0 {
		return fmt.Errorf("%d step(s) failed", failed)
	}
	return nil
}

func runRepl(_ *cobra.Command, flags *rootFlags) error {
	serverCfg, registry, err := buildEndpoint(flags)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", 0)
	repl.Start(server.NewDispatcher(serverCfg, registry, logger), registry)
	return nil
}
