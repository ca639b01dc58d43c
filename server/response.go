package server

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/errors"
)

// failure is the JSON body of a rejected tool call
type failure struct {
	Success bool `json:"success"`
	*engine.Rejection
}

// jsonResult encodes v as indented JSON text
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult encodes err as a failure object and flags the result as an error
func errorResult(err error) (*mcp.CallToolResult, error) {
	data, encErr := json.MarshalIndent(failure{Rejection: engine.AsRejection(err)}, "", "  ")
	if encErr != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultError(string(data)), nil
}

// missingParam reports a required argument the client did not send
func missingParam(err error) (*mcp.CallToolResult, error) {
	return errorResult(errors.NewInvalidRequestError("%s", strings.TrimSpace(err.Error())))
}
