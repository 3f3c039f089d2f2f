package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
	"github.com/HendryAvila/bmad-mcp/internal/content"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeUnknown      Code = "UNKNOWN_ERROR"
)

// Response is the envelope every tool answers with.
type Response struct {
	Success  bool       `json:"success"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

// ErrorInfo describes a failed call.
type ErrorInfo struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp       string   `json:"timestamp"`
	ExecutionTimeMs int64    `json:"executionTimeMs"`
	Warnings        []string `json:"warnings,omitempty"`
}

// InputError is a caller mistake: a missing argument or a bad enum value.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalidInput(field, format string, args ...any) error {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func requireString(req mcp.CallToolRequest, key string) (string, error) {
	v := strings.TrimSpace(req.GetString(key, ""))
	if v == "" {
		return "", invalidInput(key, "%s is required", key)
	}
	return v, nil
}

// CodeFor maps err to an envelope code. Typed errors are checked first;
// anything else is classified by its message.
func CodeFor(err error) Code {
	var in *InputError
	switch {
	case errors.As(err, &in):
		return CodeInvalidInput
	case errors.Is(err, agents.ErrMissingDependency),
		errors.Is(err, agents.ErrAgentNotFound),
		errors.Is(err, content.ErrNotFound):
		return CodeNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return CodeNotFound
	case strings.Contains(msg, "required"):
		return CodeInvalidInput
	}
	return CodeUnknown
}

func errorDetails(err error) any {
	var in *InputError
	if errors.As(err, &in) {
		return map[string]string{"field": in.Field}
	}
	var missing *agents.MissingDependencyError
	if errors.As(err, &missing) {
		return map[string]string{"type": string(missing.Kind), "name": missing.Name}
	}
	var perr *content.ParseError
	if errors.As(err, &perr) {
		return map[string]string{"type": string(perr.Kind), "path": perr.Path}
	}
	return nil
}

// outcome is what a handler body produces.
type outcome struct {
	data     any
	warnings []string
}

func ok(data any) (outcome, error) { return outcome{data: data}, nil }

// run executes body inside a telemetry span and wraps its result in the
// envelope. Failures come back as tool errors carrying the same JSON.
func (e *Env) run(ctx context.Context, op Operation, body func(ctx context.Context) (outcome, error)) (*mcp.CallToolResult, error) {
	start := time.Now()
	ctx, end := e.Instruments.StartCall(ctx, string(op))

	out, err := body(ctx)

	resp := Response{
		Metadata: Metadata{
			Timestamp:       start.UTC().Format(time.RFC3339Nano),
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		},
	}
	code := ""
	if err != nil {
		c := CodeFor(err)
		code = string(c)
		resp.Error = &ErrorInfo{Code: c, Message: err.Error(), Details: errorDetails(err)}
		e.logger().Warn("tool failed", zap.String("tool", string(op)), zap.String("code", code), zap.Error(err))
	} else {
		resp.Success = true
		resp.Data = out.data
		resp.Metadata.Warnings = out.warnings
		e.logger().Debug("tool succeeded", zap.String("tool", string(op)), zap.Int64("ms", resp.Metadata.ExecutionTimeMs))
	}
	end(code)

	payload, merr := json.MarshalIndent(resp, "", "  ")
	if merr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", merr)), nil
	}
	if !resp.Success {
		return mcp.NewToolResultError(string(payload)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
