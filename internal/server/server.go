// Package server provides the MCP server implementation for RDS diagnostics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/neoai-agent/rds-mcp/internal/awsx"
	"github.com/neoai-agent/rds-mcp/internal/config"
	"github.com/neoai-agent/rds-mcp/internal/directory"
	"github.com/neoai-agent/rds-mcp/internal/health"
	"github.com/neoai-agent/rds-mcp/internal/metrics"
	"github.com/neoai-agent/rds-mcp/internal/prompts"
	"github.com/neoai-agent/rds-mcp/internal/resolver"
	"github.com/neoai-agent/rds-mcp/internal/slowlog"
	"github.com/neoai-agent/rds-mcp/internal/tools"
	"github.com/neoai-agent/rds-mcp/internal/tracing"
)

// Server represents the MCP server
type Server struct {
	mcpServer    *mcp.Server
	config       *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	version      string
	healthServer *health.Server
}

// New creates a new MCP server instance.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	metricsTracker := metrics.New(logger)

	clients, err := awsx.New(ctx, cfg, metricsTracker, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS clients: %w", err)
	}

	dir := directory.New(clients.RDS, cfg.DirectoryTTL, logger)

	// Name resolution falls back to deterministic string matching when no
	// inference key is configured.
	var res resolver.Resolver
	if cfg.ResolverEnabled() {
		openaiClient := resolver.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		res = resolver.NewLLM(openaiClient, dir, cfg.Model, cfg.ResolverCacheSize, metricsTracker, logger)
		logger.Info("Using inference-backed name resolution", zap.String("model", cfg.Model))
	} else {
		res = resolver.NewStatic(dir)
		logger.Info("No OpenAI API key configured, using string-match name resolution")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "RDS MCP Server",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools:   true,
		HasPrompts: true,
	})

	s := &Server{
		mcpServer: mcpServer,
		config:    cfg,
		logger:    logger,
		metrics:   metricsTracker,
		version:   version,
	}

	// Create health server if port is configured (port > 0)
	if cfg.HealthPort > 0 {
		healthChecker := health.New(dir, cfg.Region, logger)
		s.healthServer = health.NewServer(healthChecker, logger, cfg.HealthPort, cfg.HealthBindAddr, cfg.MetricsEndpoint)
	}

	deps := &tools.Deps{
		Directory:  dir,
		Resolver:   res,
		CloudWatch: clients.CloudWatch,
		PI:         clients.PI,
		Logs:       slowlog.NewFetcher(clients.RDS, logger),
		Logger:     logger,
	}
	s.registerTools(deps)
	s.registerPrompts()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools(deps *tools.Deps) {
	s.registerTool(tools.NewGetDBInfoTool(deps))
	s.registerTool(tools.NewGetDatabaseMetricsTool(deps))
	s.registerTool(tools.NewGetDatabaseQueriesTool(deps))
	s.registerTool(tools.NewGetTopLoadTool(deps))

	s.logger.Info("Registered all MCP tools")
}

// registerTool registers a tool with metrics and tracing around execution.
func (s *Server) registerTool(t tools.Tool) {
	toolName := t.Name()

	mcpTool := &mcp.Tool{
		Name:        toolName,
		Description: t.Description(),
		InputSchema: t.InputSchema(),
		Annotations: t.Annotations(),
	}

	handler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		ctx, span := tracing.ToolSpan(ctx, toolName)
		defer span.End()

		var args map[string]interface{}
		if len(request.Params.Arguments) > 0 {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				s.metrics.RecordToolExecution(toolName, false, time.Since(start))
				tracing.RecordError(span, err)
				return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
			}
		}

		result, err := t.Execute(ctx, args)
		success := err == nil && (result == nil || !result.IsError)
		s.metrics.RecordToolExecution(toolName, success, time.Since(start))
		if err != nil {
			tracing.RecordError(span, err)
		} else if success {
			tracing.SetSuccess(span)
		}

		return result, err
	}

	s.mcpServer.AddTool(mcpTool, handler)
	s.logger.Debug("Registered tool", zap.String("tool", mcpTool.Name))
}

// registerPrompts registers all available MCP prompts
func (s *Server) registerPrompts() {
	registry := prompts.NewRegistry(s.logger)

	for _, p := range registry.GetPrompts() {
		s.mcpServer.AddPrompt(p.Prompt, p.Handler)
		s.logger.Debug("Registered prompt", zap.String("prompt", p.Prompt.Name))
	}

	s.logger.Info("Registered all MCP prompts", zap.Int("count", len(registry.GetPrompts())))
}

// Start starts the MCP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server")

	// Start health HTTP server in background if configured
	if s.healthServer != nil {
		go func() {
			if err := s.healthServer.Start(); err != nil {
				s.logger.Error("Health server error", zap.Error(err))
			}
		}()
		s.healthServer.SetReady(true)
	}

	defer func() {
		// Log final metrics on shutdown
		s.metrics.LogStats()

		if s.healthServer != nil {
			s.healthServer.SetReady(false)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.healthServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Failed to shutdown health server", zap.Error(err))
			}
		}
	}()

	// Start serving using stdio transport
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// GetMetrics returns the server's metrics tracker for external access
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.metrics
}
