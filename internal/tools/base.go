package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/neoai-agent/rds-mcp/internal/awsx"
	"github.com/neoai-agent/rds-mcp/internal/directory"
	apperrors "github.com/neoai-agent/rds-mcp/internal/errors"
	"github.com/neoai-agent/rds-mcp/internal/resolver"
)

// InstanceDirectory is the slice of the instance directory the tools consume.
type InstanceDirectory interface {
	Lookup(ctx context.Context, identifier string) (directory.Instance, bool, error)
}

// LogSource retrieves raw log file contents for an instance.
type LogSource interface {
	Download(ctx context.Context, instanceID, logFileName string) (string, error)
	DiscoverPostgresLogFiles(ctx context.Context, instanceID string, since time.Time) ([]string, error)
}

// Deps bundles everything a tool needs. One instance is shared by all tools.
type Deps struct {
	Directory  InstanceDirectory
	Resolver   resolver.Resolver
	CloudWatch awsx.CloudWatchAPI
	PI         awsx.PIAPI
	Logs       LogSource
	Logger     *zap.Logger
}

// BaseTool provides common functionality for all tools
type BaseTool struct {
	deps *Deps
}

// NewBaseTool creates a new base tool
func NewBaseTool(deps *Deps) *BaseTool {
	return &BaseTool{deps: deps}
}

// FormatResponse formats a result as pretty-printed JSON text content for MCP
func (t *BaseTool) FormatResponse(result interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format response: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: string(jsonBytes),
			},
		},
	}, nil
}

// ErrorResult builds the error payload every tool returns on failure:
// a {"status": "error", "message": ...} object, flagged as an error.
func ErrorResult(message string) *mcp.CallToolResult {
	if message == "" {
		message = "An unknown error occurred"
	}
	payload, err := json.MarshalIndent(map[string]string{
		"status":  "error",
		"message": message,
	}, "", "  ")
	if err != nil {
		payload = []byte(message)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: string(payload),
			},
		},
		IsError: true,
	}
}

// resolveInstance maps a raw database name to its directory entry. The
// second return value is non-nil when resolution failed and holds the tool
// result to hand back directly.
func (t *BaseTool) resolveInstance(ctx context.Context, rawName string) (directory.Instance, *mcp.CallToolResult) {
	identifier, err := t.deps.Resolver.Resolve(ctx, rawName)
	if err != nil {
		if errors.Is(err, resolver.ErrNoMatch) {
			serr := apperrors.NewNoMatchingInstance(rawName)
			return directory.Instance{}, ErrorResult(serr.Message)
		}
		t.deps.Logger.Error("Name resolution failed", zap.String("database_name", rawName), zap.Error(err))
		return directory.Instance{}, ErrorResult(err.Error())
	}

	inst, found, err := t.deps.Directory.Lookup(ctx, identifier)
	if err != nil {
		return directory.Instance{}, ErrorResult(apperrors.NewAWSError("RDS", err).Message)
	}
	if !found {
		serr := apperrors.NewNoMatchingInstance(rawName)
		return directory.Instance{}, ErrorResult(serr.Message)
	}

	return inst, nil
}
