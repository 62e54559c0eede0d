package tools

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	apperrors "github.com/neoai-agent/rds-mcp/internal/errors"
)

// metricsWindow is how far back each metric query looks.
const metricsWindow = 30 * time.Minute

// cloudwatchMetric pairs an AWS/RDS metric with its output key.
type cloudwatchMetric struct {
	name string
	key  string
}

// The nine headline metrics, in the order they are fetched.
var databaseMetrics = []cloudwatchMetric{
	{"CPUUtilization", "cpu_utilization"},
	{"FreeableMemory", "free_memory_bytes"},
	{"DatabaseConnections", "connections"},
	{"FreeStorageSpace", "free_storage_bytes"},
	{"ReadThroughput", "read_throughput"},
	{"WriteThroughput", "write_throughput"},
	{"ReadLatency", "read_latency"},
	{"WriteLatency", "write_latency"},
	{"DBLoad", "db_load"},
}

// GetDatabaseMetricsTool returns key CloudWatch metrics for an RDS instance.
type GetDatabaseMetricsTool struct {
	*BaseTool
}

// NewGetDatabaseMetricsTool creates a new tool instance
func NewGetDatabaseMetricsTool(deps *Deps) *GetDatabaseMetricsTool {
	return &GetDatabaseMetricsTool{BaseTool: NewBaseTool(deps)}
}

// Name returns the tool name
func (t *GetDatabaseMetricsTool) Name() string {
	return "get_database_metrics"
}

// Annotations returns tool hints for LLMs
func (t *GetDatabaseMetricsTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get Database Metrics")
}

// Description returns the tool description
func (t *GetDatabaseMetricsTool) Description() string {
	return `Get key RDS metrics including CPU, memory, connections, and storage.
Returns the latest sample from the last 30 minutes for each metric; a metric
with no data points in the window is reported as null.`
}

// InputSchema returns the input schema
func (t *GetDatabaseMetricsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"database_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the database (fuzzy matching is applied)",
			},
			"granularity": map[string]interface{}{
				"type":        "integer",
				"description": "Metric period in seconds (default 60)",
			},
		},
		"required": []string{"database_name"},
	}
}

// Execute executes the tool
func (t *GetDatabaseMetricsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	databaseName, err := GetStringParam(arguments, "database_name", true)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	granularity, err := GetIntParamDefault(arguments, "granularity", 60)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	inst, errResult := t.resolveInstance(ctx, databaseName)
	if errResult != nil {
		return errResult, nil
	}

	end := time.Now().UTC()
	start := end.Add(-metricsWindow)

	results := make(map[string]interface{}, len(databaseMetrics))
	for _, metric := range databaseMetrics {
		value, err := t.fetchMetric(ctx, inst.Identifier, metric.name, granularity, start, end)
		if err != nil {
			t.deps.Logger.Error("Failed to fetch CloudWatch metric",
				zap.String("metric", metric.name),
				zap.String("instance", inst.Identifier),
				zap.Error(err),
			)
			return ErrorResult(apperrors.NewAWSError("CloudWatch", err).Message), nil
		}
		results[metric.key] = value
	}

	return t.FormatResponse(map[string]interface{}{
		"status":   "success",
		"database": inst.Identifier,
		"metrics":  results,
	})
}

// fetchMetric queries one AWS/RDS metric and returns the latest sample, or
// nil when the window holds no data points.
func (t *GetDatabaseMetricsTool) fetchMetric(ctx context.Context, identifier, metricName string, granularity int, start, end time.Time) (interface{}, error) {
	out, err := t.deps.CloudWatch.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		StartTime: aws.Time(start),
		EndTime:   aws.Time(end),
		MetricDataQueries: []cwtypes.MetricDataQuery{
			{
				Id: aws.String(strings.ToLower(metricName)),
				MetricStat: &cwtypes.MetricStat{
					Metric: &cwtypes.Metric{
						Namespace:  aws.String("AWS/RDS"),
						MetricName: aws.String(metricName),
						Dimensions: []cwtypes.Dimension{
							{Name: aws.String("DBInstanceIdentifier"), Value: aws.String(identifier)},
						},
					},
					Period: aws.Int32(int32(granularity)),
					Stat:   aws.String("Average"),
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if len(out.MetricDataResults) == 0 || len(out.MetricDataResults[0].Values) == 0 {
		return nil, nil
	}
	values := out.MetricDataResults[0].Values
	return values[len(values)-1], nil
}
