package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dex/errors"
)

// SyncCmd rebuilds the Related Tasks section of pages
var SyncCmd = &cobra.Command{
	Use:   "sync [page]",
	Short: "Rebuild the Related Tasks section of a page",
	Long: `Rebuild the Related Tasks section of a person or company page from
03-Tasks/Tasks.md. With --all, every page the task list links is rebuilt.

Examples:
  dex sync People/External/Jane_Doe.md
  dex sync --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var syncAll bool

func init() {
	SyncCmd.Flags().BoolVar(&syncAll, "all", false, "Rebuild every page linked from the task list")
}

func runSync(cmd *cobra.Command, args []string) error {
	if !syncAll && len(args) == 0 {
		return errors.New("pass a page path or --all")
	}
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}

	if syncAll {
		res, err := e.SyncLinkedPages(cmd.Context())
		if err != nil {
			return fail(cmd, err)
		}
		return emit(cmd, res, func() (string, error) {
			var b strings.Builder
			for _, p := range res.Pages {
				b.WriteString(fmt.Sprintf("%s %s\n", pterm.LightGreen("✓"), p))
			}
			for _, f := range res.Failed {
				b.WriteString(fmt.Sprintf("%s %s: %s\n", pterm.LightRed("✗"), f.File, f.Error))
			}
			b.WriteString(pterm.Gray(fmt.Sprintf("%d page(s) synced", len(res.Pages))))
			return b.String(), nil
		})
	}

	res, err := e.SyncTaskRefs(cmd.Context(), args[0])
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, res, func() (string, error) {
		state := "unchanged"
		if res.Changed {
			state = "updated"
		}
		return fmt.Sprintf("%s %s: %d related task(s), %s", pterm.LightGreen("✓"), res.Page, res.TasksFound, state), nil
	})
}
