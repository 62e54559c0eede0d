// Package metrics provides metrics collection and reporting for the MCP server.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metric labels
const (
	labelTool    = "tool"
	labelService = "service"
	labelCache   = "cache"
)

// Metrics tracks operational metrics with both internal counters and Prometheus metrics
type Metrics struct {
	// AWS API call metrics (internal atomic counters for fast access)
	totalAWSCalls  atomic.Uint64
	failedAWSCalls atomic.Uint64

	// Latency tracking for AWS calls
	totalLatency atomic.Int64 // microseconds
	latencyCount atomic.Uint64
	maxLatency   atomic.Int64
	minLatency   atomic.Int64

	// Name resolution metrics
	inferenceCalls    atomic.Uint64
	inferenceFailures atomic.Uint64

	// Cache hit/miss tracking per cache
	cachesMu    sync.RWMutex
	cacheHits   map[string]uint64
	cacheMisses map[string]uint64

	// Tool usage tracking
	toolsMu     sync.RWMutex
	toolUsage   map[string]uint64
	toolErrors  map[string]uint64
	toolLatency map[string]int64 // microseconds

	logger *zap.Logger

	// Prometheus metrics
	promAWSCalls        *prometheus.CounterVec
	promAWSErrors       *prometheus.CounterVec
	promAWSLatency      *prometheus.HistogramVec
	promInferenceCalls  prometheus.Counter
	promInferenceFailed prometheus.Counter
	promCacheHits       *prometheus.CounterVec
	promCacheMisses     *prometheus.CounterVec
	promToolCalls       *prometheus.CounterVec
	promToolErrors      *prometheus.CounterVec
	promToolLatency     *prometheus.HistogramVec
}

// New creates a new metrics tracker with Prometheus integration
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		cacheHits:   make(map[string]uint64),
		cacheMisses: make(map[string]uint64),
		toolUsage:   make(map[string]uint64),
		toolErrors:  make(map[string]uint64),
		toolLatency: make(map[string]int64),
		logger:      logger,

		// Initialize Prometheus metrics using promauto (auto-registers with default registry)
		promAWSCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "aws_calls_total",
			Help:      "Total number of AWS API calls, labeled by service (rds, cloudwatch, pi)",
		}, []string{labelService}),
		promAWSErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "aws_errors_total",
			Help:      "Total number of failed AWS API calls, labeled by service",
		}, []string{labelService}),
		promAWSLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rds_mcp",
			Name:      "aws_call_latency_seconds",
			Help:      "AWS API call latency in seconds, labeled by service",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		}, []string{labelService}),
		promInferenceCalls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "inference_calls_total",
			Help:      "Total number of name-resolution inference calls",
		}),
		promInferenceFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "inference_failures_total",
			Help:      "Total number of failed or rejected inference calls",
		}),
		promCacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "cache_hits_total",
			Help:      "Cache hits, labeled by cache name (directory, resolver)",
		}, []string{labelCache}),
		promCacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "cache_misses_total",
			Help:      "Cache misses, labeled by cache name",
		}, []string{labelCache}),

		// Tool-specific metrics - tracks every tool call with labels for tool name
		promToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls, labeled by tool name (e.g., get_db_info, get_database_queries)",
		}, []string{labelTool}),
		promToolErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rds_mcp",
			Name:      "tool_errors_total",
			Help:      "Total number of tool errors, labeled by tool name",
		}, []string{labelTool}),
		promToolLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rds_mcp",
			Name:      "tool_latency_seconds",
			Help:      "Tool execution latency in seconds, labeled by tool name",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		}, []string{labelTool}),
	}

	// Initialize min latency to max value
	m.minLatency.Store(int64(time.Hour))

	return m
}

// RecordAWSCall records an AWS API call (both internal counters and Prometheus)
func (m *Metrics) RecordAWSCall(service string, success bool, latency time.Duration) {
	m.totalAWSCalls.Add(1)

	m.promAWSCalls.WithLabelValues(service).Inc()
	m.promAWSLatency.WithLabelValues(service).Observe(latency.Seconds())

	if !success {
		m.failedAWSCalls.Add(1)
		m.promAWSErrors.WithLabelValues(service).Inc()
	}

	m.recordLatency(latency)
}

// RecordInference records a name-resolution inference call
func (m *Metrics) RecordInference(success bool) {
	m.inferenceCalls.Add(1)
	m.promInferenceCalls.Inc()
	if !success {
		m.inferenceFailures.Add(1)
		m.promInferenceFailed.Inc()
	}
}

// RecordCacheAccess records a hit or miss on a named cache
func (m *Metrics) RecordCacheAccess(cache string, hit bool) {
	m.cachesMu.Lock()
	if hit {
		m.cacheHits[cache]++
	} else {
		m.cacheMisses[cache]++
	}
	m.cachesMu.Unlock()

	if hit {
		m.promCacheHits.WithLabelValues(cache).Inc()
	} else {
		m.promCacheMisses.WithLabelValues(cache).Inc()
	}
}

// RecordToolExecution records tool usage (both internal counters and Prometheus)
// This is called for every tool invocation, tracking:
// - Total calls per tool
// - Errors per tool
// - Latency distribution per tool
func (m *Metrics) RecordToolExecution(toolName string, success bool, latency time.Duration) {
	// Update internal counters
	m.toolsMu.Lock()
	m.toolUsage[toolName]++
	if !success {
		m.toolErrors[toolName]++
	}

	// Update average latency using rolling average to avoid integer overflow
	if latency > 0 && m.toolUsage[toolName] > 0 {
		currentLatency := m.toolLatency[toolName]
		count := float64(m.toolUsage[toolName])
		avgLatency := (float64(currentLatency)*(count-1) + float64(latency.Microseconds())) / count
		m.toolLatency[toolName] = int64(avgLatency)
	}
	m.toolsMu.Unlock()

	// Update Prometheus metrics (labeled by tool name)
	m.promToolCalls.WithLabelValues(toolName).Inc()
	m.promToolLatency.WithLabelValues(toolName).Observe(latency.Seconds())
	if !success {
		m.promToolErrors.WithLabelValues(toolName).Inc()
	}
}

func (m *Metrics) recordLatency(latency time.Duration) {
	latencyUs := latency.Microseconds()

	m.totalLatency.Add(latencyUs)
	m.latencyCount.Add(1)

	// Update max latency
	for {
		currentMax := m.maxLatency.Load()
		if latencyUs <= currentMax {
			break
		}
		if m.maxLatency.CompareAndSwap(currentMax, latencyUs) {
			break
		}
	}

	// Update min latency
	for {
		currentMin := m.minLatency.Load()
		if latencyUs >= currentMin {
			break
		}
		if m.minLatency.CompareAndSwap(currentMin, latencyUs) {
			break
		}
	}
}

// GetStats returns current statistics
func (m *Metrics) GetStats() Stats {
	m.cachesMu.RLock()
	cacheHits := make(map[string]uint64, len(m.cacheHits))
	cacheMisses := make(map[string]uint64, len(m.cacheMisses))
	for k, v := range m.cacheHits {
		cacheHits[k] = v
	}
	for k, v := range m.cacheMisses {
		cacheMisses[k] = v
	}
	m.cachesMu.RUnlock()

	m.toolsMu.RLock()
	toolUsage := make(map[string]uint64, len(m.toolUsage))
	toolErrors := make(map[string]uint64, len(m.toolErrors))
	toolLatency := make(map[string]time.Duration, len(m.toolLatency))
	for k, v := range m.toolUsage {
		toolUsage[k] = v
	}
	for k, v := range m.toolErrors {
		toolErrors[k] = v
	}
	for k, v := range m.toolLatency {
		toolLatency[k] = time.Duration(v) * time.Microsecond
	}
	m.toolsMu.RUnlock()

	latencyCount := m.latencyCount.Load()
	var avgLatency time.Duration
	if latencyCount > 0 {
		avgLatencyMicros := float64(m.totalLatency.Load()) / float64(latencyCount)
		avgLatency = time.Duration(avgLatencyMicros) * time.Microsecond
	}

	return Stats{
		TotalAWSCalls:     m.totalAWSCalls.Load(),
		FailedAWSCalls:    m.failedAWSCalls.Load(),
		InferenceCalls:    m.inferenceCalls.Load(),
		InferenceFailures: m.inferenceFailures.Load(),
		AverageLatency:    avgLatency,
		MaxLatency:        time.Duration(m.maxLatency.Load()) * time.Microsecond,
		MinLatency:        time.Duration(m.minLatency.Load()) * time.Microsecond,
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
		ToolUsage:         toolUsage,
		ToolErrors:        toolErrors,
		ToolLatency:       toolLatency,
	}
}

// LogStats logs current statistics
func (m *Metrics) LogStats() {
	stats := m.GetStats()

	var errorRate float64
	if stats.TotalAWSCalls > 0 {
		errorRate = float64(stats.FailedAWSCalls) / float64(stats.TotalAWSCalls) * 100
	}

	m.logger.Info("Operational metrics",
		zap.Uint64("total_aws_calls", stats.TotalAWSCalls),
		zap.Uint64("failed_aws_calls", stats.FailedAWSCalls),
		zap.Float64("error_rate_pct", errorRate),
		zap.Uint64("inference_calls", stats.InferenceCalls),
		zap.Uint64("inference_failures", stats.InferenceFailures),
		zap.Duration("avg_latency", stats.AverageLatency),
		zap.Duration("max_latency", stats.MaxLatency),
		zap.Duration("min_latency", stats.MinLatency),
		zap.Any("cache_hits", stats.CacheHits),
		zap.Any("cache_misses", stats.CacheMisses),
		zap.Any("tool_usage", stats.ToolUsage),
	)
}

// Stats represents current metrics
type Stats struct {
	TotalAWSCalls     uint64
	FailedAWSCalls    uint64
	InferenceCalls    uint64
	InferenceFailures uint64
	AverageLatency    time.Duration
	MaxLatency        time.Duration
	MinLatency        time.Duration
	CacheHits         map[string]uint64
	CacheMisses       map[string]uint64
	ToolUsage         map[string]uint64
	ToolErrors        map[string]uint64
	ToolLatency       map[string]time.Duration
}
