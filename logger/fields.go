package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across dex.
const (
	// Identity and context
	FieldRequestID = "request_id"
	FieldTool      = "tool"

	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldPath      = "path"
	FieldQuery     = "query"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError  = "error"
	FieldReason = "reason"

	// Counts
	FieldCount = "count"

	// Files
	FieldFile = "file"
	FieldLine = "line"

	// Vault
	FieldAnchor   = "anchor"
	FieldPage     = "page"
	FieldPriority = "priority"
	FieldPillar   = "pillar"
	FieldDemo     = "demo_mode"
)

type contextKey string

const (
	requestIDKey contextKey = "logger_request_id"
	componentKey contextKey = "logger_component"
	operationKey contextKey = "logger_operation"
)

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithOperation adds the engine operation name to the context for logging
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	var fields []interface{}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}
	if op, ok := ctx.Value(operationKey).(string); ok && op != "" {
		fields = append(fields, FieldOperation, op)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Synchronizer struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func New() *Synchronizer {
//	    return &Synchronizer{logger: logger.ComponentLogger("xref")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
