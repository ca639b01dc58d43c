package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/dex/display"
	"github.com/teranos/dex/engine"
)

// InboxCmd triages raw items against the task list
var InboxCmd = &cobra.Command{
	Use:   "inbox <item>...",
	Short: "Triage inbox items into new tasks, likely duplicates and vague items",
	Long: `Triage inbox items against the active tasks.

Each item is reported as a likely duplicate, as too vague to file, or as
ready to create with a guessed pillar and priority. With --create the ready
items go through the same checks as "dex task add".

Examples:
  dex inbox "Email Sarah about Q1 budget" "fix bug"
  dex inbox --create "Draft the partner enablement guide for Q2 launch"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInbox,
}

var inboxCreate bool

func init() {
	InboxCmd.Flags().BoolVar(&inboxCreate, "create", false, "Create every ready item as a task")
}

func runInbox(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	res, err := e.ProcessInbox(cmd.Context(), engine.InboxRequest{Items: args, AutoCreate: inboxCreate})
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, res, func() (string, error) { return display.Inbox(res), nil })
}
