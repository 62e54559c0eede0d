package awsx

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/pi"
	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// Service labels used for per-call metrics.
const (
	ServiceRDS        = "rds"
	ServiceCloudWatch = "cloudwatch"
	ServicePI         = "pi"
)

// CallRecorder receives the outcome of every AWS API call.
type CallRecorder interface {
	RecordAWSCall(service string, success bool, latency time.Duration)
}

// instrumentedRDS records call outcome and latency for each RDS call.
type instrumentedRDS struct {
	api      RDSAPI
	recorder CallRecorder
}

func (i *instrumentedRDS) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	start := time.Now()
	out, err := i.api.DescribeDBInstances(ctx, params, optFns...)
	i.recorder.RecordAWSCall(ServiceRDS, err == nil, time.Since(start))
	return out, err
}

func (i *instrumentedRDS) DescribeDBLogFiles(ctx context.Context, params *rds.DescribeDBLogFilesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBLogFilesOutput, error) {
	start := time.Now()
	out, err := i.api.DescribeDBLogFiles(ctx, params, optFns...)
	i.recorder.RecordAWSCall(ServiceRDS, err == nil, time.Since(start))
	return out, err
}

func (i *instrumentedRDS) DownloadDBLogFilePortion(ctx context.Context, params *rds.DownloadDBLogFilePortionInput, optFns ...func(*rds.Options)) (*rds.DownloadDBLogFilePortionOutput, error) {
	start := time.Now()
	out, err := i.api.DownloadDBLogFilePortion(ctx, params, optFns...)
	i.recorder.RecordAWSCall(ServiceRDS, err == nil, time.Since(start))
	return out, err
}

type instrumentedCloudWatch struct {
	api      CloudWatchAPI
	recorder CallRecorder
}

func (i *instrumentedCloudWatch) GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error) {
	start := time.Now()
	out, err := i.api.GetMetricData(ctx, params, optFns...)
	i.recorder.RecordAWSCall(ServiceCloudWatch, err == nil, time.Since(start))
	return out, err
}

type instrumentedPI struct {
	api      PIAPI
	recorder CallRecorder
}

func (i *instrumentedPI) DescribeDimensionKeys(ctx context.Context, params *pi.DescribeDimensionKeysInput, optFns ...func(*pi.Options)) (*pi.DescribeDimensionKeysOutput, error) {
	start := time.Now()
	out, err := i.api.DescribeDimensionKeys(ctx, params, optFns...)
	i.recorder.RecordAWSCall(ServicePI, err == nil, time.Since(start))
	return out, err
}
