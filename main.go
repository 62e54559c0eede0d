// Package main implements the RDS MCP (Model Context Protocol) server.
//
// This server provides read-only MCP tools for diagnosing AWS RDS databases:
// instance information, CloudWatch metrics, slow-query log analysis, and
// Performance Insights load breakdowns.
//
// The server communicates using the MCP protocol over stdio, making it
// compatible with Claude Desktop and other MCP clients. All diagnostic output
// goes to stderr so stdout stays clean for the protocol stream.
//
// Configuration is provided through flags and environment variables:
//   - AWS_REGION / --region: AWS region to operate in (required)
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: static credentials (optional,
//     the default AWS credential chain is used when absent)
//   - OPENAI_API_KEY / --openai-api-key: enables fuzzy instance-name
//     resolution via an inference service (optional)
//
// Example usage:
//
//	export AWS_REGION="us-east-1"
//	./rds-mcp
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neoai-agent/rds-mcp/internal/config"
	"github.com/neoai-agent/rds-mcp/internal/server"
	"github.com/neoai-agent/rds-mcp/internal/tracing"
)

// Build information - set at build time via ldflags
var (
	version = "dev"     // e.g., "v0.3.0" or "dev"
	commit  = "unknown" // Git commit SHA
)

// shutdownTimeout bounds how long we wait for in-flight work on exit.
const shutdownTimeout = 10 * time.Second

// main is the entry point for the RDS MCP server.
// It initializes the server, loads configuration, and handles graceful shutdown.
func main() {
	// Load .env file if it exists (optional, for development)
	_ = godotenv.Load()

	// Load configuration, then let CLI flags override env-derived values
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Ignore error on cleanup
	}()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting RDS MCP Server",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("region", cfg.Region),
		zap.Bool("resolver_enabled", cfg.ResolverEnabled()),
	)

	// Initialize tracing before the server so tool spans have a provider
	shutdownTracing, err := tracing.InitOTel(tracing.OTelConfig{
		ServiceName:    "rds-mcp",
		ServiceVersion: version,
		Enabled:        cfg.EnableTracing,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to shutdown tracing", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mcpServer, err := server.New(ctx, cfg, logger, version)
	if err != nil {
		logger.Fatal("Failed to create MCP server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Channel to signal server completion
	serverDone := make(chan error, 1)

	go func() {
		serverDone <- mcpServer.Start(ctx)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
		cancel()
		return
	}

	// Initiate graceful shutdown with timeout
	logger.Info("Initiating graceful shutdown", zap.Duration("timeout", shutdownTimeout))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	select {
	case <-serverDone:
		logger.Info("Server shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout exceeded, forcing exit",
			zap.Duration("timeout", shutdownTimeout))
	}

	// Allow a brief moment for final cleanup
	time.Sleep(100 * time.Millisecond)
}

// initLogger builds a zap logger honoring the configured level and format.
// Output always goes to stderr: stdout carries the MCP stdio transport.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
