// Package prompts provides pre-built prompts for common RDS diagnostic
// workflows.
package prompts

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// PromptDefinition represents a prompt with its metadata and handler
type PromptDefinition struct {
	// Prompt is the MCP prompt metadata
	Prompt *mcp.Prompt
	// Handler is the function that generates the prompt content
	Handler mcp.PromptHandler
}

// Registry holds all registered prompts
type Registry struct {
	logger  *zap.Logger
	prompts []*PromptDefinition
}

// NewRegistry creates a new prompt registry with all available prompts
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger: logger,
	}
	r.registerPrompts()
	return r
}

// GetPrompts returns all registered prompt definitions
func (r *Registry) GetPrompts() []*PromptDefinition {
	return r.prompts
}

func (r *Registry) registerPrompts() {
	r.prompts = []*PromptDefinition{
		r.triageSlowQueriesPrompt(),
		r.databaseHealthReviewPrompt(),
	}
}

// Helper to create a prompt result with user role
func createPromptResult(description, content string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: content,
				},
			},
		},
	}
}

// getStringArg safely extracts a string argument with a default value
func getStringArg(args map[string]string, key, defaultVal string) string {
	if val, ok := args[key]; ok && val != "" {
		return val
	}
	return defaultVal
}

// triageSlowQueriesPrompt creates the "triage_slow_queries" prompt definition
func (r *Registry) triageSlowQueriesPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "triage_slow_queries",
			Title:       "Triage Slow Queries",
			Description: "Guide through investigating slow queries on an RDS database",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "database_name",
					Description: "Name of the database to investigate (fuzzy matching is supported)",
					Required:    false,
				},
				{
					Name:        "period_minutes",
					Description: "How far back to look in the slow-query log (default 60)",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			databaseName := getStringArg(req.Params.Arguments, "database_name", "your-database")
			period := getStringArg(req.Params.Arguments, "period_minutes", "60")

			content := fmt.Sprintf(`Let's triage slow queries on %s. I'll work through this in order:

1. **Confirm the instance**: run get_db_info with database_name "%s" to verify
   the resolved instance, its engine, and its status.
2. **Pull the slow-query log**: run get_database_queries with database_name
   "%s" and period_minutes %s. This returns the top 5 slowest statements with
   their durations.
3. **Correlate with load**: run get_top_rds_load with the same database to see
   which SQL statements, users, and wait events dominate active sessions.
4. **Check resource pressure**: run get_database_metrics to see whether CPU,
   connections, or I/O latency spiked over the same window.

From the combined output I'll identify whether the slowness is a bad query
plan, missing index, lock contention, or plain resource saturation, and
suggest next steps.`, databaseName, databaseName, databaseName, period)

			return createPromptResult("Slow query triage workflow", content), nil
		},
	}
}

// databaseHealthReviewPrompt creates the "database_health_review" prompt definition
func (r *Registry) databaseHealthReviewPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "database_health_review",
			Title:       "Database Health Review",
			Description: "Run a quick health review of an RDS database instance",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "database_name",
					Description: "Name of the database to review (fuzzy matching is supported)",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			databaseName := getStringArg(req.Params.Arguments, "database_name", "your-database")

			content := fmt.Sprintf(`I'll run a health review of %s:

**Step 1: Instance overview**
- Use: get_db_info with database_name "%s"
- Confirms status, endpoint, engine, and allocated storage.

**Step 2: Resource metrics (last 30 minutes)**
- Use: get_database_metrics
- Review cpu_utilization, free_memory_bytes, connections,
  free_storage_bytes, and read/write latency.

**Step 3: Active load profile**
- Use: get_top_rds_load
- Shows which statements, users, and wait events consume the most
  average active sessions.

**Step 4: Slow-query check**
- Use: get_database_queries with period_minutes 60
- Surfaces the worst offenders from the slow-query log.

I'll summarize findings per area, flag anything outside normal ranges
(storage headroom, connection spikes, latency outliers), and recommend
follow-ups.`, databaseName, databaseName)

			return createPromptResult("Database health review workflow", content), nil
		},
	}
}
