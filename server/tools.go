package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/relations"
	"github.com/teranos/dex/tasks"
)

// Tool names, in registration order
const (
	ToolListTasks      = "list_tasks"
	ToolCreateTask     = "create_task"
	ToolUpdateStatus   = "update_task_status"
	ToolSystemStatus   = "get_system_status"
	ToolCheckLimits    = "check_priority_limits"
	ToolProcessInbox   = "process_inbox_with_dedup"
	ToolBlockedTasks   = "get_blocked_tasks"
	ToolSuggestFocus   = "suggest_focus"
	ToolPillarSummary  = "get_pillar_summary"
	ToolSyncTaskRefs   = "sync_task_refs"
	ToolRefreshCompany = "refresh_company"
	ToolListCompanies  = "list_companies"
	ToolCreateCompany  = "create_company"
)

var toolOrder = []string{
	ToolListTasks, ToolCreateTask, ToolUpdateStatus, ToolSystemStatus, ToolCheckLimits,
	ToolProcessInbox, ToolBlockedTasks, ToolSuggestFocus, ToolPillarSummary,
	ToolSyncTaskRefs, ToolRefreshCompany, ToolListCompanies, ToolCreateCompany,
}

var stringItems = mcp.Items(map[string]interface{}{"type": "string"})

// registerTools registers all MCP tools for dex operations
func (s *MCPServer) registerTools() {
	s.addTool(mcp.NewTool(ToolListTasks,
		mcp.WithDescription("List tasks from the task list and week priorities, with optional filters"),
		mcp.WithString("pillar", mcp.Description("Pillar id or name")),
		mcp.WithString("priority", mcp.Description("Priority tier"), mcp.Enum("P0", "P1", "P2", "P3")),
		mcp.WithString("status", mcp.Description("Status name or code: n, s, b, d")),
		mcp.WithString("source", mcp.Description("Task source"), mcp.Enum(tasks.SourceTasks, tasks.SourceWeekPriorities)),
		mcp.WithBoolean("include_done", mcp.Description("Include completed tasks (default: false)")),
	), s.handleListTasks)

	s.addTool(mcp.NewTool(ToolCreateTask,
		mcp.WithDescription("Create a task after checking vagueness, duplicates and priority limits"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Specific, actionable task title")),
		mcp.WithString("pillar", mcp.Required(), mcp.Description("Pillar id or name")),
		mcp.WithString("priority", mcp.Description("Priority tier (default: P2)"), mcp.Enum("P0", "P1", "P2", "P3")),
		mcp.WithString("context", mcp.Description("One line of context written under the task")),
		mcp.WithString("section", mcp.Description("Section of the task list (default: configured section)")),
		mcp.WithString("account", mcp.Description("Company page to link, vault-relative")),
		mcp.WithArray("people", mcp.Description("Person pages to link, vault-relative"), stringItems),
	), s.handleCreateTask)

	s.addTool(mcp.NewTool(ToolUpdateStatus,
		mcp.WithDescription("Change a task's status in every file that carries it"),
		mcp.WithString("task_id", mcp.Description("Task anchor, task-YYYYMMDD-NNN")),
		mcp.WithString("task_title", mcp.Description("Title substring, used when no task_id is given")),
		mcp.WithString("status", mcp.Required(), mcp.Description("n, s, b, d or not_started, started, blocked, done")),
	), s.handleUpdateStatus)

	s.addTool(mcp.NewTool(ToolSystemStatus,
		mcp.WithDescription("Summarize the task set: counts, limit alerts and blocked tasks"),
	), s.handleSystemStatus)

	s.addTool(mcp.NewTool(ToolCheckLimits,
		mcp.WithDescription("Compare active task counts per priority with the WIP limits"),
	), s.handleCheckLimits)

	s.addTool(mcp.NewTool(ToolProcessInbox,
		mcp.WithDescription("Triage inbox items into new tasks, likely duplicates and vague items"),
		mcp.WithArray("items", mcp.Required(), mcp.Description("Raw inbox items, one per entry"), stringItems),
		mcp.WithBoolean("auto_create", mcp.Description("Create every ready item as a task (default: false)")),
	), s.handleProcessInbox)

	s.addTool(mcp.NewTool(ToolBlockedTasks,
		mcp.WithDescription("List active tasks that are blocked or waiting on something"),
	), s.handleBlockedTasks)

	s.addTool(mcp.NewTool(ToolSuggestFocus,
		mcp.WithDescription("Suggest the most urgent tasks to work on next"),
		mcp.WithNumber("max_tasks", mcp.Description("Number of suggestions (default: 3)")),
	), s.handleSuggestFocus)

	s.addTool(mcp.NewTool(ToolPillarSummary,
		mcp.WithDescription("Show how active tasks spread over the strategic pillars"),
	), s.handlePillarSummary)

	s.addTool(mcp.NewTool(ToolSyncTaskRefs,
		mcp.WithDescription("Rebuild the Related Tasks section of a person or company page"),
		mcp.WithString("page_path", mcp.Required(), mcp.Description("Vault-relative page path")),
	), s.handleSyncTaskRefs)

	s.addTool(mcp.NewTool(ToolRefreshCompany,
		mcp.WithDescription("Rebuild the contacts, meetings and tasks sections of a company page"),
		mcp.WithString("company_path", mcp.Required(), mcp.Description("Company page path or file name")),
	), s.handleRefreshCompany)

	s.addTool(mcp.NewTool(ToolListCompanies,
		mcp.WithDescription("List company pages with stage, industry and contact count"),
	), s.handleListCompanies)

	s.addTool(mcp.NewTool(ToolCreateCompany,
		mcp.WithDescription("Create a company page from the standard template"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Company name")),
		mcp.WithString("website", mcp.Description("Website; its domain is used when no domains are given")),
		mcp.WithString("industry", mcp.Description("Industry")),
		mcp.WithString("size", mcp.Description("Company size")),
		mcp.WithString("stage", mcp.Description("Relationship stage (default: Prospect)"),
			mcp.Enum(relations.Stages...)),
		mcp.WithArray("domains", mcp.Description("Email domains used to detect meetings"), stringItems),
	), s.handleCreateCompany)
}

// handleListTasks handles list_tasks tool calls
func (s *MCPServer) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.engine.ListTasks(ctx, engine.ListFilter{
		Pillar:      request.GetString("pillar", ""),
		Priority:    request.GetString("priority", ""),
		Status:      request.GetString("status", ""),
		Source:      request.GetString("source", ""),
		IncludeDone: request.GetBool("include_done", false),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(list)
}

// handleCreateTask handles create_task tool calls
func (s *MCPServer) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return missingParam(err)
	}
	pillar, err := request.RequireString("pillar")
	if err != nil {
		return missingParam(err)
	}

	res, err := s.engine.CreateTask(ctx, engine.CreateTaskRequest{
		Title:    title,
		Pillar:   pillar,
		Priority: request.GetString("priority", ""),
		Context:  request.GetString("context", ""),
		Section:  request.GetString("section", ""),
		Account:  request.GetString("account", ""),
		People:   request.GetStringSlice("people", nil),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

// handleUpdateStatus handles update_task_status tool calls
func (s *MCPServer) handleUpdateStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := request.RequireString("status")
	if err != nil {
		return missingParam(err)
	}

	res, err := s.engine.UpdateTaskStatus(ctx, engine.UpdateStatusRequest{
		AnchorID:   request.GetString("task_id", ""),
		TitleQuery: request.GetString("task_title", ""),
		Status:     status,
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

// handleSystemStatus handles get_system_status tool calls
func (s *MCPServer) handleSystemStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.engine.SystemStatus(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(st)
}

// handleCheckLimits handles check_priority_limits tool calls
func (s *MCPServer) handleCheckLimits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.engine.CheckPriorityLimits(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(report)
}

// handleProcessInbox handles process_inbox_with_dedup tool calls
func (s *MCPServer) handleProcessInbox(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := request.RequireStringSlice("items")
	if err != nil {
		return missingParam(err)
	}

	res, err := s.engine.ProcessInbox(ctx, engine.InboxRequest{
		Items:      items,
		AutoCreate: request.GetBool("auto_create", false),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

// handleBlockedTasks handles get_blocked_tasks tool calls
func (s *MCPServer) handleBlockedTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.engine.BlockedTasks(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(list)
}

// handleSuggestFocus handles suggest_focus tool calls
func (s *MCPServer) handleSuggestFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	focus, err := s.engine.SuggestFocus(ctx, request.GetInt("max_tasks", engine.DefaultFocus))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(focus)
}

// handlePillarSummary handles get_pillar_summary tool calls
func (s *MCPServer) handlePillarSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.engine.PillarSummary(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(report)
}

// handleSyncTaskRefs handles sync_task_refs tool calls
func (s *MCPServer) handleSyncTaskRefs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := request.RequireString("page_path")
	if err != nil {
		return missingParam(err)
	}

	res, err := s.engine.SyncTaskRefs(ctx, page)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

// handleRefreshCompany handles refresh_company tool calls
func (s *MCPServer) handleRefreshCompany(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	company, err := request.RequireString("company_path")
	if err != nil {
		return missingParam(err)
	}

	res, err := s.engine.RefreshCompany(ctx, company)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

// handleListCompanies handles list_companies tool calls
func (s *MCPServer) handleListCompanies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.engine.ListCompanies(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(list)
}

// handleCreateCompany handles create_company tool calls
func (s *MCPServer) handleCreateCompany(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return missingParam(err)
	}

	res, err := s.engine.CreateCompany(ctx, relations.NewCompany{
		Name:     name,
		Website:  request.GetString("website", ""),
		Industry: request.GetString("industry", ""),
		Size:     request.GetString("size", ""),
		Stage:    request.GetString("stage", ""),
		Domains:  request.GetStringSlice("domains", nil),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}
