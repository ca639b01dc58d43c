package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/dex/cmd/dex/commands"
	"github.com/teranos/dex/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dex",
	Short: "dex - task log and relationship pages over a Markdown vault",
	Long: `dex - task log and relationship pages over a Markdown vault.

dex keeps 03-Tasks/Tasks.md, person pages and company pages consistent. New
tasks are checked for vagueness, duplicates and priority limits before they
are written; status changes reach every file that carries the task.

Available commands:
  serve    - Run the MCP server on stdio
  task     - List, add and update tasks
  inbox    - Triage inbox items against the task list
  sync     - Rebuild the Related Tasks section of a page
  company  - List, create and refresh company pages
  status   - Summarize the task set
  watch    - Re-sync linked pages when the task list changes
  am       - Show dex configuration ("I am")

Examples:
  dex task add "Send Q1 pricing proposal to Jane" --pillar pillar_1 --priority P1
  dex task done task-20260115-001
  dex company refresh Acme_Corp
  dex serve                 # MCP server for agent clients`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logJSON, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(logJSON, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON")
	rootCmd.PersistentFlags().String("vault", "", "Vault root (default: vault.path from am.toml, VAULT_PATH or cwd)")
	rootCmd.PersistentFlags().Bool("demo", false, "Force demo mode on or off, ignoring System/user-profile.yaml")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.TaskCmd)
	rootCmd.AddCommand(commands.InboxCmd)
	rootCmd.AddCommand(commands.SyncCmd)
	rootCmd.AddCommand(commands.CompanyCmd)
	rootCmd.AddCommand(commands.StatusCmd)
	rootCmd.AddCommand(commands.LimitsCmd)
	rootCmd.AddCommand(commands.FocusCmd)
	rootCmd.AddCommand(commands.BlockedCmd)
	rootCmd.AddCommand(commands.PillarsCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !commands.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
