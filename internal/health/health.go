package health

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result
type Check struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// InstanceLister is the slice of the instance directory the checker probes.
type InstanceLister interface {
	Identifiers(ctx context.Context) ([]string, error)
}

// Checker performs health checks
type Checker struct {
	directory InstanceLister
	region    string
	logger    *zap.Logger
}

// New creates a new health checker
func New(directory InstanceLister, region string, logger *zap.Logger) *Checker {
	return &Checker{
		directory: directory,
		region:    region,
		logger:    logger,
	}
}

// CheckAll performs all health checks
func (c *Checker) CheckAll(ctx context.Context) (Status, []Check) {
	checks := []Check{
		c.checkConfiguration(),
		c.checkAWSConnectivity(ctx),
	}

	// Determine overall status
	overallStatus := StatusHealthy
	for _, check := range checks {
		if check.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		} else if check.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	return overallStatus, checks
}

// checkConfiguration verifies the server has a usable AWS configuration
func (c *Checker) checkConfiguration() Check {
	start := time.Now()
	check := Check{
		Name:      "configuration",
		Timestamp: start,
	}
	check.Duration = time.Since(start)

	if c.region == "" {
		check.Status = StatusUnhealthy
		check.Message = "AWS region is not configured"
		return check
	}

	check.Status = StatusHealthy
	check.Message = fmt.Sprintf("Configured for region %s", c.region)
	return check
}

// checkAWSConnectivity verifies the RDS control plane is reachable by
// listing the instance directory.
func (c *Checker) checkAWSConnectivity(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:      "aws_connectivity",
		Timestamp: start,
	}

	// Use a short timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ids, err := c.directory.Identifiers(checkCtx)
	check.Duration = time.Since(start)

	if err != nil {
		if check.Duration > 3*time.Second {
			check.Status = StatusDegraded
			check.Message = "RDS API responding slowly"
		} else {
			check.Status = StatusUnhealthy
			check.Message = fmt.Sprintf("RDS API unreachable: %v", err)
		}
		c.logger.Warn("Health check failed: AWS connectivity",
			zap.Error(err),
			zap.Duration("duration", check.Duration),
		)
	} else {
		check.Status = StatusHealthy
		check.Message = fmt.Sprintf("RDS API reachable, %d instances visible", len(ids))
		c.logger.Debug("Health check passed: AWS connectivity",
			zap.Duration("duration", check.Duration),
		)
	}

	return check
}
