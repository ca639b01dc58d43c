package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/dex/display"
)

// StatusCmd shows the task system snapshot
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show counts by priority and pillar, blocked work and limit alerts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd)
		if err != nil {
			return fail(cmd, err)
		}
		st, err := e.SystemStatus(cmd.Context())
		if err != nil {
			return fail(cmd, err)
		}
		return emit(cmd, st, func() (string, error) { return display.SystemStatus(st) })
	},
}

// LimitsCmd checks active counts against the WIP limits
var LimitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Check active tasks against the priority limits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd)
		if err != nil {
			return fail(cmd, err)
		}
		r, err := e.CheckPriorityLimits(cmd.Context())
		if err != nil {
			return fail(cmd, err)
		}
		return emit(cmd, r, func() (string, error) { return display.Limits(r) })
	},
}

var focusCount int

// FocusCmd suggests what to work on next
var FocusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Suggest the next tasks to work on",
	Long: `Suggest the next tasks to work on, highest priority first.
Blocked tasks are skipped.

Examples:
  dex focus
  dex focus -n 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd)
		if err != nil {
			return fail(cmd, err)
		}
		f, err := e.SuggestFocus(cmd.Context(), focusCount)
		if err != nil {
			return fail(cmd, err)
		}
		return emit(cmd, f, func() (string, error) { return display.Focus(f) })
	},
}

// BlockedCmd lists blocked tasks
var BlockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List tasks that are blocked or waiting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd)
		if err != nil {
			return fail(cmd, err)
		}
		l, err := e.BlockedTasks(cmd.Context())
		if err != nil {
			return fail(cmd, err)
		}
		return emit(cmd, l, func() (string, error) { return display.Blocked(l) })
	},
}

// PillarsCmd summarizes active work per pillar
var PillarsCmd = &cobra.Command{
	Use:   "pillars",
	Short: "Summarize active tasks per strategic pillar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cmd)
		if err != nil {
			return fail(cmd, err)
		}
		r, err := e.PillarSummary(cmd.Context())
		if err != nil {
			return fail(cmd, err)
		}
		return emit(cmd, r, func() (string, error) { return display.Pillars(r) })
	},
}

func init() {
	FocusCmd.Flags().IntVarP(&focusCount, "number", "n", 3, "Number of suggestions")
}
