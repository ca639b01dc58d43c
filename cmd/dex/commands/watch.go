package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/watch"
)

// WatchCmd keeps linked pages in sync while the task list is edited
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-sync linked pages whenever the task list changes",
	Long: `Watch 03-Tasks/Tasks.md and the week priorities, and rebuild the
Related Tasks section of every linked page after each change.

Changes are debounced by watch.debounce_ms (default 500). Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	w, err := watch.New(e, time.Duration(e.Config().Watch.DebounceMS)*time.Millisecond)
	if err != nil {
		return fail(cmd, err)
	}

	out := cmd.OutOrStdout()
	w.OnSync(func(res *engine.LinkedSync, err error) {
		stamp := pterm.Gray(time.Now().Format("15:04:05"))
		if err != nil {
			fmt.Fprintf(out, "%s %s %s\n", stamp, pterm.LightRed("✗"), err)
			return
		}
		fmt.Fprintf(out, "%s %s %d page(s) synced\n", stamp, pterm.LightGreen("✓"), len(res.Pages))
		for _, f := range res.Failed {
			fmt.Fprintf(out, "    %s %s: %s\n", pterm.LightRed("✗"), f.File, f.Error)
		}
	})

	ctx, stop := signalContext()
	defer stop()

	pterm.Info.Printfln("Watching %s", e.Vault().Layout().Tasks())
	return w.Run(ctx)
}
