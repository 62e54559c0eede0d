package slowlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"go.uber.org/zap"

	"github.com/neoai-agent/rds-mcp/internal/awsx"
)

const (
	// MySQLSlowLogFile is the fixed slow-log path on MySQL-family instances.
	MySQLSlowLogFile = "slowquery/mysql-slowquery.log"

	// postgresLogPrefix filters the instance's log files down to the rotated
	// Postgres server logs.
	postgresLogPrefix = "error/postgresql.log."

	// pageLines is the portion size requested per download call.
	pageLines = 1000
)

// Fetcher downloads RDS log files through the paginated portion API.
type Fetcher struct {
	api    awsx.RDSAPI
	logger *zap.Logger
}

// NewFetcher creates a log fetcher over the RDS control-plane client.
func NewFetcher(api awsx.RDSAPI, logger *zap.Logger) *Fetcher {
	return &Fetcher{api: api, logger: logger}
}

// Download retrieves a complete log file, following pagination markers until
// the service reports no more data. A marker that stops advancing ends the
// loop with whatever was collected rather than spinning forever.
func (f *Fetcher) Download(ctx context.Context, instanceID, logFileName string) (string, error) {
	var sb strings.Builder
	marker := "0"

	for {
		out, err := f.api.DownloadDBLogFilePortion(ctx, &rds.DownloadDBLogFilePortionInput{
			DBInstanceIdentifier: aws.String(instanceID),
			LogFileName:          aws.String(logFileName),
			NumberOfLines:        aws.Int32(pageLines),
			Marker:               aws.String(marker),
		})
		if err != nil {
			return "", fmt.Errorf("failed to download log file %s: %w", logFileName, err)
		}

		sb.WriteString(aws.ToString(out.LogFileData))

		if !aws.ToBool(out.AdditionalDataPending) {
			break
		}
		next := aws.ToString(out.Marker)
		if next == "" || next == marker {
			f.logger.Warn("Log download marker did not advance, stopping",
				zap.String("log_file", logFileName),
				zap.String("marker", marker),
			)
			break
		}
		marker = next
	}

	return sb.String(), nil
}

// DiscoverPostgresLogFiles lists the rotated Postgres log files written at or
// after the given time, following the describe API's pagination.
func (f *Fetcher) DiscoverPostgresLogFiles(ctx context.Context, instanceID string, since time.Time) ([]string, error) {
	sinceMillis := since.UnixMilli()

	var files []string
	var marker *string

	for {
		out, err := f.api.DescribeDBLogFiles(ctx, &rds.DescribeDBLogFilesInput{
			DBInstanceIdentifier: aws.String(instanceID),
			FilenameContains:     aws.String(postgresLogPrefix),
			Marker:               marker,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list log files for %s: %w", instanceID, err)
		}

		for _, lf := range out.DescribeDBLogFiles {
			if aws.ToInt64(lf.LastWritten) >= sinceMillis {
				files = append(files, aws.ToString(lf.LogFileName))
			}
		}

		if out.Marker == nil || aws.ToString(out.Marker) == "" {
			break
		}
		marker = out.Marker
	}

	f.logger.Debug("Discovered Postgres log files",
		zap.String("instance", instanceID),
		zap.Int("count", len(files)),
	)
	return files, nil
}
