package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/dex/server"
	"github.com/teranos/dex/version"
)

// ServeCmd runs the MCP tool server on stdio
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task tools over MCP on stdin/stdout",
	Long: `Serve the task tools to an agent over the Model Context Protocol.

The server speaks JSON-RPC on stdin/stdout, so logs go to stderr only.
Register it with your agent as:

  {"command": "dex", "args": ["serve"], "env": {"VAULT_PATH": "/path/to/vault"}}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd)
		if err != nil {
			return err
		}
		return server.NewMCPServer(e, version.Get().ServerVersion()).Serve()
	},
}
