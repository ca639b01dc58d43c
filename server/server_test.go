package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dex/am"
	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/internal/testvault"
)

func newTestServer(t *testing.T, v *testvault.Vault) *MCPServer {
	t.Helper()
	cfg, err := am.Defaults(v.Root)
	require.NoError(t, err)
	e, err := engine.New(engine.Options{Config: cfg, Now: testvault.Now})
	require.NoError(t, err)
	return NewMCPServer(e, "test")
}

// call invokes a tool and decodes its JSON text
func call(t *testing.T, s *MCPServer, name string, args map[string]interface{}) (*mcp.CallToolResult, map[string]interface{}) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.Call(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body), text.Text)
	return res, body
}

func TestToolsRegistered(t *testing.T) {
	s := newTestServer(t, testvault.New(t))
	assert.Equal(t, toolOrder, s.Tools())
	assert.Len(t, s.Tools(), 13)
}

func TestCreateTaskTool(t *testing.T) {
	v := testvault.New(t)
	v.Person("Jane Doe", "Acme Corp", "CTO")
	s := newTestServer(t, v)

	res, body := call(t, s, ToolCreateTask, map[string]interface{}{
		"title":    "Send Jane the signed order form",
		"pillar":   "pillar_1",
		"priority": "P1",
		"people":   []interface{}{"People/External/Jane_Doe.md"},
	})
	assert.False(t, res.IsError)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "task-20260115-001", body["task_id"])
	assert.Equal(t, []interface{}{"People/External/Jane_Doe.md"}, body["synced_pages"])
	assert.Contains(t, v.Read("People/External/Jane_Doe.md"), "Send Jane the signed order form")
}

func TestToolFailures(t *testing.T) {
	v := testvault.New(t)
	s := newTestServer(t, v)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
		code string
	}{
		{"missing pillar", ToolCreateTask, map[string]interface{}{"title": "Draft the renewal proposal for Initech"}, "invalid_request"},
		{"vague title", ToolCreateTask, map[string]interface{}{"title": "fix bug", "pillar": "pillar_1"}, "vague"},
		{"bad status", ToolUpdateStatus, map[string]interface{}{"task_id": "task-20260101-001", "status": "x"}, "invalid_request"},
		{"unknown anchor", ToolUpdateStatus, map[string]interface{}{"task_id": "task-20260101-001", "status": "d"}, "not_found"},
		{"missing page", ToolSyncTaskRefs, map[string]interface{}{"page_path": "People/External/Nobody.md"}, "not_found"},
		{"missing company", ToolRefreshCompany, map[string]interface{}{"company_path": "Globex"}, "not_found"},
		{"bad source filter", ToolListTasks, map[string]interface{}{"source": "email"}, "invalid_request"},
		{"no inbox items", ToolProcessInbox, map[string]interface{}{}, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := call(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}

	t.Run("vague carries questions", func(t *testing.T) {
		_, body := call(t, s, ToolCreateTask, map[string]interface{}{"title": "fix bug", "pillar": "pillar_1"})
		details, ok := body["details"].(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, details["clarification_needed"])
		assert.NotEmpty(t, body["suggestion"])
	})

	t.Run("unknown tool", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Name = "delete_everything"
		res, err := s.Call(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestReportTools(t *testing.T) {
	v := testvault.New(t)
	v.Lines("03-Tasks/Tasks.md",
		"# Tasks",
		"",
		"## This Week",
		"- [ ] **Close the Initech security review** ^task-20260112-001",
		"\t- Pillar: Pillar 1 | Priority: P0",
		"- [ ] **Waiting on legal to approve the MSA** ^task-20260112-002",
		"\t- Pillar: Pillar 2 | Priority: P1",
		"- [ ] **Write the quarterly investor update** ^task-20260112-003",
		"\t- Pillar: Pillar 3 | Priority: P2",
	)
	s := newTestServer(t, v)

	_, status := call(t, s, ToolSystemStatus, nil)
	assert.EqualValues(t, 3, status["active_tasks"])
	assert.EqualValues(t, 1, status["blocked_tasks"])

	_, limits := call(t, s, ToolCheckLimits, nil)
	assert.Equal(t, true, limits["balanced"])

	_, blocked := call(t, s, ToolBlockedTasks, nil)
	assert.EqualValues(t, 1, blocked["count"])

	_, focus := call(t, s, ToolSuggestFocus, map[string]interface{}{"max_tasks": float64(1)})
	suggestions, ok := focus["suggested_focus"].([]interface{})
	require.True(t, ok)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Close the Initech security review", suggestions[0].(map[string]interface{})["title"])

	_, pillars := call(t, s, ToolPillarSummary, nil)
	assert.Equal(t, "Balanced across pillars", pillars["balance_assessment"])

	_, list := call(t, s, ToolListTasks, map[string]interface{}{"priority": "P0"})
	assert.EqualValues(t, 1, list["count"])
}

func TestInboxAndCompanyTools(t *testing.T) {
	v := testvault.New(t)
	s := newTestServer(t, v)

	_, inbox := call(t, s, ToolProcessInbox, map[string]interface{}{
		"items":       []interface{}{"fix bug", "Draft the partner enablement guide for Q2 launch"},
		"auto_create": true,
	})
	summary := inbox["summary"].(map[string]interface{})
	assert.EqualValues(t, 2, summary["total_items"])
	assert.EqualValues(t, 1, summary["needs_clarification"])
	assert.EqualValues(t, 1, summary["auto_created"])

	res, created := call(t, s, ToolCreateCompany, map[string]interface{}{
		"name":    "Globex Corporation",
		"website": "https://www.globex.com",
		"stage":   "customer",
	})
	assert.False(t, res.IsError)
	assert.Equal(t, "Active/Relationships/Companies/Globex_Corporation.md", created["filepath"])

	_, companies := call(t, s, ToolListCompanies, nil)
	assert.EqualValues(t, 1, companies["count"])

	res, refreshed := call(t, s, ToolRefreshCompany, map[string]interface{}{"company_path": "Globex_Corporation"})
	assert.False(t, res.IsError)
	assert.Equal(t, true, refreshed["success"])
}
