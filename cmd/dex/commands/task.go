package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/dex/display"
	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/tasks"
)

// TaskCmd groups task operations
var TaskCmd = &cobra.Command{
	Use:   "task",
	Short: "List, add and update tasks",
	Long: `List, add and update tasks in 03-Tasks/Tasks.md.

Examples:
  dex task ls --priority P0
  dex task add "Send Q1 pricing proposal to Jane" --pillar pillar_1 --person People/External/Jane_Doe.md
  dex task done task-20260115-001
  dex task status task-20260115-001 blocked`,
}

var taskLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE:    runTaskLs,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task after vagueness, duplicate and limit checks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAdd,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Complete a task everywhere it appears",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args[0], string(tasks.StatusDone))
	},
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Reopen a completed task everywhere it appears",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args[0], string(tasks.StatusNotStarted))
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Set a task's status: n, s, b, d or not_started, started, blocked, done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args[0], args[1])
	},
}

var (
	lsFilter engine.ListFilter

	addReq engine.CreateTaskRequest

	byTitle bool
)

func init() {
	taskLsCmd.Flags().StringVar(&lsFilter.Pillar, "pillar", "", "Filter by pillar id or name")
	taskLsCmd.Flags().StringVar(&lsFilter.Priority, "priority", "", "Filter by priority (P0-P3)")
	taskLsCmd.Flags().StringVar(&lsFilter.Status, "status", "", "Filter by status (n, s, b, d)")
	taskLsCmd.Flags().StringVar(&lsFilter.Source, "source", "", "Filter by source: tasks or week_priorities")
	taskLsCmd.Flags().BoolVarP(&lsFilter.IncludeDone, "all", "a", false, "Include completed tasks")

	taskAddCmd.Flags().StringVarP(&addReq.Pillar, "pillar", "p", "", "Pillar id or name (required)")
	taskAddCmd.Flags().StringVarP(&addReq.Priority, "priority", "P", "", "Priority (default: P2)")
	taskAddCmd.Flags().StringVarP(&addReq.Context, "context", "c", "", "Context line written under the task")
	taskAddCmd.Flags().StringVarP(&addReq.Section, "section", "s", "", "Section of the task list")
	taskAddCmd.Flags().StringVar(&addReq.Account, "account", "", "Company page to link")
	taskAddCmd.Flags().StringSliceVar(&addReq.People, "person", nil, "Person page to link (repeatable)")
	_ = taskAddCmd.MarkFlagRequired("pillar")

	for _, c := range []*cobra.Command{taskDoneCmd, taskReopenCmd, taskStatusCmd} {
		c.Flags().BoolVarP(&byTitle, "title", "t", false, "Treat the first argument as a title substring")
	}

	TaskCmd.AddCommand(taskLsCmd)
	TaskCmd.AddCommand(taskAddCmd)
	TaskCmd.AddCommand(taskDoneCmd)
	TaskCmd.AddCommand(taskReopenCmd)
	TaskCmd.AddCommand(taskStatusCmd)
}

func runTaskLs(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	list, err := e.ListTasks(cmd.Context(), lsFilter)
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, list, func() (string, error) { return display.Tasks(list) })
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	req := addReq
	req.Title = args[0]
	res, err := e.CreateTask(cmd.Context(), req)
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, res, func() (string, error) { return display.Created(res), nil })
}

func runStatus(cmd *cobra.Command, target, status string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	req := engine.UpdateStatusRequest{AnchorID: target, Status: status}
	if byTitle {
		req = engine.UpdateStatusRequest{TitleQuery: target, Status: status}
	}
	res, err := e.UpdateTaskStatus(cmd.Context(), req)
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, res, func() (string, error) { return display.StatusUpdate(res), nil })
}
