package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/formflow-go/formflow"
	"github.com/formflow-go/formflow/internal/logging"
	"github.com/formflow-go/formflow/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the FormFlow engine as an MCP Server.
This allows AI agents to inspect logic graphs and walk form previews as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		levelName, _ := cmd.Flags().GetString("log-level")

		// Logs go to stderr so stdio transport keeps stdout clean for
		// JSON-RPC.
		logger := logging.NewWriter(os.Stderr, logging.ParseLevel(levelName))
		slog.SetDefault(logger)

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(app.Manager(), formflow.Version)

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			slog.Info("starting formflow mcp server (stdio)")
			return srv.ServeStdio()
		case "sse":
			slog.Info("starting formflow mcp server (sse)", "port", port)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return err
			}
			slog.Info("mcp server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
