package tools

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pi"
	pitypes "github.com/aws/aws-sdk-go-v2/service/pi/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	apperrors "github.com/neoai-agent/rds-mcp/internal/errors"
)

// loadDimension is one Performance Insights group-by to report on.
type loadDimension struct {
	group     string
	dimension string
	label     string
}

// The three load breakdowns, keyed to Performance Insights dimension groups.
var loadDimensions = []loadDimension{
	{"db.sql", "db.sql.statement", "Top SQL"},
	{"db.user", "db.user.name", "Top Users"},
	{"db.wait_event", "db.wait_event.name", "Top Waits"},
}

// loadRow is one ranked entry within a breakdown.
type loadRow struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// GetTopLoadTool returns the top SQL statements, users, and wait events by
// average active sessions from Performance Insights.
type GetTopLoadTool struct {
	*BaseTool
}

// NewGetTopLoadTool creates a new tool instance
func NewGetTopLoadTool(deps *Deps) *GetTopLoadTool {
	return &GetTopLoadTool{BaseTool: NewBaseTool(deps)}
}

// Name returns the tool name
func (t *GetTopLoadTool) Name() string {
	return "get_top_rds_load"
}

// Annotations returns tool hints for LLMs
func (t *GetTopLoadTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get Top RDS Load")
}

// Description returns the tool description
func (t *GetTopLoadTool) Description() string {
	return `Retrieve the top SQL statements, users, and wait events by average
active sessions (AAS) for an RDS instance over a time window. Requires
Performance Insights to be enabled on the instance.`
}

// InputSchema returns the input schema
func (t *GetTopLoadTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"database_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the database (fuzzy matching is applied)",
			},
			"minutes": map[string]interface{}{
				"type":        "integer",
				"description": "Time window in minutes to analyze (default 30)",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum results per breakdown (default 5)",
			},
		},
		"required": []string{"database_name"},
	}
}

// Execute executes the tool
func (t *GetTopLoadTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	databaseName, err := GetStringParam(arguments, "database_name", true)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	minutes, err := GetIntParamDefault(arguments, "minutes", 30)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	maxResults, err := GetIntParamDefault(arguments, "max_results", 5)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	inst, errResult := t.resolveInstance(ctx, databaseName)
	if errResult != nil {
		return errResult, nil
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(minutes) * time.Minute)

	results := make(map[string][]loadRow, len(loadDimensions))
	for _, dim := range loadDimensions {
		rows, err := t.fetchDimension(ctx, inst.ResourceID, dim, start, end, maxResults)
		if err != nil {
			t.deps.Logger.Error("Failed to fetch Performance Insights dimension",
				zap.String("group", dim.group),
				zap.String("resource_id", inst.ResourceID),
				zap.Error(err),
			)
			return ErrorResult(apperrors.NewAWSError("Performance Insights", err).Message), nil
		}
		results[dim.label] = rows
	}

	return t.FormatResponse(results)
}

// fetchDimension queries one dimension group and returns its rows sorted by
// load descending.
func (t *GetTopLoadTool) fetchDimension(ctx context.Context, resourceID string, dim loadDimension, start, end time.Time, maxResults int) ([]loadRow, error) {
	out, err := t.deps.PI.DescribeDimensionKeys(ctx, &pi.DescribeDimensionKeysInput{
		ServiceType: pitypes.ServiceTypeRds,
		Identifier:  aws.String(resourceID),
		Metric:      aws.String("db.load.avg"),
		StartTime:   aws.Time(start),
		EndTime:     aws.Time(end),
		GroupBy: &pitypes.DimensionGroup{
			Group:      aws.String(dim.group),
			Dimensions: []string{dim.dimension},
		},
		MaxResults: aws.Int32(int32(maxResults)),
	})
	if err != nil {
		return nil, err
	}

	rows := make([]loadRow, 0, len(out.Keys))
	for _, key := range out.Keys {
		label, ok := key.Dimensions[dim.dimension]
		if !ok {
			label = "Unknown"
		}
		rows = append(rows, loadRow{
			Label: label,
			Total: math.Round(aws.ToFloat64(key.Total)*100) / 100,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows, nil
}
