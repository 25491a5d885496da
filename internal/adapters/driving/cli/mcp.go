package cli

import (
	"errors"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose houseplan to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the proposal workflow as MCP tools",
	Long: `Serves ingest_plan, submit_request, chat, open_plan and close_session to an
MCP client, along with the open sessions as resources.

JSON-RPC runs over stdin and stdout unless --port is given, in which case the
streamable HTTP transport listens on --host:--port.

  houseplan mcp serve
  houseplan mcp serve --port 8080

A client that launches servers itself is pointed at the binary:

  "houseplan": {"command": "/usr/local/bin/houseplan", "args": ["mcp", "serve"]}

Sessions opened by the client are closed when the server stops.`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface for the HTTP transport")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{Session: sessionService, Ingest: ingestService})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
