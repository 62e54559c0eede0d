package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRDS struct {
	describeCalls int
	instances     []types.DBInstance
	err           error
}

func (f *fakeRDS) DescribeDBInstances(_ context.Context, _ *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	f.describeCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &rds.DescribeDBInstancesOutput{DBInstances: f.instances}, nil
}

func (f *fakeRDS) DescribeDBLogFiles(_ context.Context, _ *rds.DescribeDBLogFilesInput, _ ...func(*rds.Options)) (*rds.DescribeDBLogFilesOutput, error) {
	return &rds.DescribeDBLogFilesOutput{}, nil
}

func (f *fakeRDS) DownloadDBLogFilePortion(_ context.Context, _ *rds.DownloadDBLogFilePortionInput, _ ...func(*rds.Options)) (*rds.DownloadDBLogFilePortionOutput, error) {
	return &rds.DownloadDBLogFilePortionOutput{}, nil
}

func dbInstance(id, engine string) types.DBInstance {
	return types.DBInstance{
		DBInstanceIdentifier: aws.String(id),
		Engine:               aws.String(engine),
		DBInstanceStatus:     aws.String("available"),
		DbiResourceId:        aws.String("db-" + id),
		AllocatedStorage:     aws.Int32(100),
		Endpoint: &types.Endpoint{
			Address: aws.String(id + ".abc.us-east-1.rds.amazonaws.com"),
			Port:    aws.Int32(3306),
		},
	}
}

func TestList_CachesWithinTTL(t *testing.T) {
	fake := &fakeRDS{instances: []types.DBInstance{dbInstance("test-db-1", "mysql")}}
	cache := New(fake, 5*time.Minute, zap.NewNop())

	first, err := cache.List(context.Background())
	require.NoError(t, err)
	second, err := cache.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.describeCalls, "second call within TTL must not hit the API")
}

func TestList_RefreshesAfterExpiry(t *testing.T) {
	fake := &fakeRDS{instances: []types.DBInstance{dbInstance("test-db-1", "mysql")}}
	cache := New(fake, 5*time.Minute, zap.NewNop())

	now := time.Unix(1700000000, 0)
	cache.now = func() time.Time { return now }

	_, err := cache.List(context.Background())
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = cache.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, fake.describeCalls)
}

func TestList_ErrorLeavesSnapshotUntouched(t *testing.T) {
	fake := &fakeRDS{instances: []types.DBInstance{dbInstance("test-db-1", "mysql")}}
	cache := New(fake, 5*time.Minute, zap.NewNop())

	now := time.Unix(1700000000, 0)
	cache.now = func() time.Time { return now }

	first, err := cache.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Expire the snapshot, then fail the refresh.
	now = now.Add(6 * time.Minute)
	fake.err = errors.New("throttled")

	_, err = cache.List(context.Background())
	require.Error(t, err)

	// Old snapshot is still present; a later successful refresh recovers.
	fake.err = nil
	recovered, err := cache.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, recovered)
}

func TestList_MapsInstanceFields(t *testing.T) {
	fake := &fakeRDS{instances: []types.DBInstance{dbInstance("prod-db", "postgres")}}
	cache := New(fake, 0, zap.NewNop())

	instances, err := cache.List(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)

	inst := instances[0]
	assert.Equal(t, "prod-db", inst.Identifier)
	assert.Equal(t, "postgres", inst.Engine)
	assert.Equal(t, "available", inst.Status)
	assert.Equal(t, "db-prod-db", inst.ResourceID)
	assert.Equal(t, int32(100), inst.AllocatedStorage)
	assert.Equal(t, "prod-db.abc.us-east-1.rds.amazonaws.com", inst.EndpointAddress)
	assert.Equal(t, int32(3306), inst.EndpointPort)
}

func TestIdentifiersAndLookup(t *testing.T) {
	fake := &fakeRDS{instances: []types.DBInstance{
		dbInstance("test-db-1", "mysql"),
		dbInstance("prod-db-1", "postgres"),
	}}
	cache := New(fake, time.Minute, zap.NewNop())

	ids, err := cache.Identifiers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"test-db-1", "prod-db-1"}, ids)

	inst, found, err := cache.Lookup(context.Background(), "prod-db-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "postgres", inst.Engine)

	_, found, err = cache.Lookup(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, 1, fake.describeCalls, "all reads served from one snapshot")
}
