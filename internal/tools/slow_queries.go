package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	apperrors "github.com/neoai-agent/rds-mcp/internal/errors"
	"github.com/neoai-agent/rds-mcp/internal/slowlog"
)

// topQueriesShown caps how many records appear in the headline output.
const topQueriesShown = 5

// GetDatabaseQueriesTool retrieves and ranks slow queries from the RDS
// slow-query log.
type GetDatabaseQueriesTool struct {
	*BaseTool
}

// NewGetDatabaseQueriesTool creates a new tool instance
func NewGetDatabaseQueriesTool(deps *Deps) *GetDatabaseQueriesTool {
	return &GetDatabaseQueriesTool{BaseTool: NewBaseTool(deps)}
}

// Name returns the tool name
func (t *GetDatabaseQueriesTool) Name() string {
	return "get_database_queries"
}

// Annotations returns tool hints for LLMs
func (t *GetDatabaseQueriesTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get Slow Queries")
}

// Description returns the tool description
func (t *GetDatabaseQueriesTool) Description() string {
	return `Get slow query logs from an RDS database (supports MySQL and PostgreSQL).

Downloads the instance's slow-query log, parses it, and returns the top 5
slowest statements by duration. Long IN (...) lists and oversized statements
are collapsed so results stay readable.`
}

// InputSchema returns the input schema
func (t *GetDatabaseQueriesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"database_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the database (fuzzy matching is applied)",
			},
			"period_minutes": map[string]interface{}{
				"type":        "integer",
				"description": "How far back to look for slow queries (default 60)",
			},
		},
		"required": []string{"database_name"},
	}
}

// Execute executes the tool
func (t *GetDatabaseQueriesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	databaseName, err := GetStringParam(arguments, "database_name", true)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	periodMinutes, err := GetIntParamDefault(arguments, "period_minutes", 60)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	inst, errResult := t.resolveInstance(ctx, databaseName)
	if errResult != nil {
		return errResult, nil
	}

	// Engine dispatch happens before any log fetch: an unsupported engine
	// is a typed error, never a parser invocation.
	var records []slowlog.Record
	switch slowlog.EngineFromName(inst.Engine) {
	case slowlog.EngineMySQL:
		records, err = t.fetchMySQL(ctx, inst.Identifier)
	case slowlog.EnginePostgres:
		records, err = t.fetchPostgres(ctx, inst.Identifier, periodMinutes)
	default:
		return ErrorResult(apperrors.NewUnsupportedEngine(inst.Engine).Message), nil
	}
	if err != nil {
		t.deps.Logger.Error("Failed to retrieve slow-query log",
			zap.String("instance", inst.Identifier),
			zap.Error(err),
		)
		return ErrorResult(apperrors.NewAWSError("RDS", err).Message), nil
	}

	ranked := slowlog.RankByDuration(records)

	return t.FormatResponse(map[string]interface{}{
		"status":             "success",
		"database":           inst.Identifier,
		"period_minutes":     periodMinutes,
		"total_slow_queries": len(ranked),
		"top_5_queries":      slowlog.Top(ranked, topQueriesShown),
	})
}

func (t *GetDatabaseQueriesTool) fetchMySQL(ctx context.Context, identifier string) ([]slowlog.Record, error) {
	raw, err := t.deps.Logs.Download(ctx, identifier, slowlog.MySQLSlowLogFile)
	if err != nil {
		return nil, err
	}
	return slowlog.ParseMySQLSlowLog(raw), nil
}

func (t *GetDatabaseQueriesTool) fetchPostgres(ctx context.Context, identifier string, periodMinutes int) ([]slowlog.Record, error) {
	since := time.Now().UTC().Add(-time.Duration(periodMinutes) * time.Minute)

	files, err := t.deps.Logs.DiscoverPostgresLogFiles(ctx, identifier, since)
	if err != nil {
		return nil, err
	}

	var records []slowlog.Record
	for _, file := range files {
		raw, err := t.deps.Logs.Download(ctx, identifier, file)
		if err != nil {
			return nil, err
		}
		records = append(records, slowlog.ParsePostgresLog(raw)...)
	}
	return records, nil
}
