package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetDBInfoTool returns detailed information about an RDS instance.
type GetDBInfoTool struct {
	*BaseTool
}

// NewGetDBInfoTool creates a new tool instance
func NewGetDBInfoTool(deps *Deps) *GetDBInfoTool {
	return &GetDBInfoTool{BaseTool: NewBaseTool(deps)}
}

// Name returns the tool name
func (t *GetDBInfoTool) Name() string {
	return "get_db_info"
}

// Annotations returns tool hints for LLMs
func (t *GetDBInfoTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get RDS Instance Info")
}

// Description returns the tool description
func (t *GetDBInfoTool) Description() string {
	return `Get detailed information about an RDS database instance.

The database name is matched fuzzily against the instances in the account,
so a service name like "payments" resolves to its RDS instance identifier.

**Related tools:** get_database_metrics, get_database_queries, get_top_rds_load`
}

// InputSchema returns the input schema
func (t *GetDBInfoTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"database_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the database (exact identifier not required, fuzzy matching is applied)",
			},
		},
		"required": []string{"database_name"},
	}
}

// Execute executes the tool
func (t *GetDBInfoTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	databaseName, err := GetStringParam(arguments, "database_name", true)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	inst, errResult := t.resolveInstance(ctx, databaseName)
	if errResult != nil {
		return errResult, nil
	}

	// The field names mirror the RDS API so output lines up with what
	// operators see in the AWS console and CLI.
	return t.FormatResponse(map[string]interface{}{
		"status":               inst.Status,
		"DBInstanceIdentifier": inst.Identifier,
		"DBInstanceEndpoint":   inst.EndpointAddress,
		"DBInstancePort":       inst.EndpointPort,
		"DbiResourceId":        inst.ResourceID,
		"AllocatedStorage":     inst.AllocatedStorage,
	})
}
