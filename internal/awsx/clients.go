// Package awsx provides the AWS service clients used by the MCP tools:
// RDS for the control plane, CloudWatch for metrics, and Performance
// Insights for load breakdowns.
package awsx

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/pi"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/neoai-agent/rds-mcp/internal/config"
)

// RDSAPI is the subset of the RDS control-plane API the server consumes.
// Narrow on purpose so tests can fake it.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	DescribeDBLogFiles(ctx context.Context, params *rds.DescribeDBLogFilesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBLogFilesOutput, error)
	DownloadDBLogFilePortion(ctx context.Context, params *rds.DownloadDBLogFilePortionInput, optFns ...func(*rds.Options)) (*rds.DownloadDBLogFilePortionOutput, error)
}

// CloudWatchAPI is the subset of the CloudWatch API the server consumes.
type CloudWatchAPI interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// PIAPI is the subset of the Performance Insights API the server consumes.
type PIAPI interface {
	DescribeDimensionKeys(ctx context.Context, params *pi.DescribeDimensionKeysInput, optFns ...func(*pi.Options)) (*pi.DescribeDimensionKeysOutput, error)
}

// Clients bundles the AWS service clients behind their narrow interfaces.
type Clients struct {
	RDS        RDSAPI
	CloudWatch CloudWatchAPI
	PI         PIAPI
}

// New builds the AWS clients from the default credential chain, with an
// optional static-credential override, per-call metrics, and a shared
// client-side rate limiter.
func New(ctx context.Context, cfg *config.Config, recorder CallRecorder, logger *zap.Logger) (*Clients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if cfg.HasStaticCredentials() {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretAccessKey, "")
	} else {
		logger.Info("No explicit AWS credentials provided, using default credential chain")
	}

	clients := &Clients{
		RDS:        rds.NewFromConfig(awsCfg),
		CloudWatch: cloudwatch.NewFromConfig(awsCfg),
		PI:         pi.NewFromConfig(awsCfg),
	}

	if recorder != nil {
		clients.RDS = &instrumentedRDS{api: clients.RDS, recorder: recorder}
		clients.CloudWatch = &instrumentedCloudWatch{api: clients.CloudWatch, recorder: recorder}
		clients.PI = &instrumentedPI{api: clients.PI, recorder: recorder}
	}

	if cfg.EnableRateLimit {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
		clients.RDS = &limitedRDS{api: clients.RDS, limiter: limiter}
		clients.CloudWatch = &limitedCloudWatch{api: clients.CloudWatch, limiter: limiter}
		clients.PI = &limitedPI{api: clients.PI, limiter: limiter}
		logger.Debug("AWS client rate limiting enabled",
			zap.Int("rate", cfg.RateLimit),
			zap.Int("burst", cfg.RateLimitBurst),
		)
	}

	return clients, nil
}

// limitedRDS applies the shared rate limiter before each RDS call.
type limitedRDS struct {
	api     RDSAPI
	limiter *rate.Limiter
}

func (l *limitedRDS) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	return l.api.DescribeDBInstances(ctx, params, optFns...)
}

func (l *limitedRDS) DescribeDBLogFiles(ctx context.Context, params *rds.DescribeDBLogFilesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBLogFilesOutput, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	return l.api.DescribeDBLogFiles(ctx, params, optFns...)
}

func (l *limitedRDS) DownloadDBLogFilePortion(ctx context.Context, params *rds.DownloadDBLogFilePortionInput, optFns ...func(*rds.Options)) (*rds.DownloadDBLogFilePortionOutput, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	return l.api.DownloadDBLogFilePortion(ctx, params, optFns...)
}

type limitedCloudWatch struct {
	api     CloudWatchAPI
	limiter *rate.Limiter
}

func (l *limitedCloudWatch) GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	return l.api.GetMetricData(ctx, params, optFns...)
}

type limitedPI struct {
	api     PIAPI
	limiter *rate.Limiter
}

func (l *limitedPI) DescribeDimensionKeys(ctx context.Context, params *pi.DescribeDimensionKeysInput, optFns ...func(*pi.Options)) (*pi.DescribeDimensionKeysOutput, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	return l.api.DescribeDimensionKeys(ctx, params, optFns...)
}
