// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"github.com/pedigree/pedigree/internal/pkg/must"
	"github.com/pedigree/pedigree/pkg/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP stdio server",
	Long: `Run pedigree as an MCP server communicating via stdin/stdout.
Allows pedigree to be run as a sub-process by an MCP tool.
For a HTTP streaming server use the 'serve' command with the '--mcp' flag.
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := newConfig(cmd)
		server := mcp.NewServer(newSource(cmd, c), crawlOptions(c))
		log.Info("MCP server starting on stdio.")
		must.Must(server.ServeStdio(cmd.Context()))
	},
}

func init() {
	addSourceFlags(mcpCmd)
	addCrawlFlags(mcpCmd)
	rootCmd.AddCommand(mcpCmd)
}
