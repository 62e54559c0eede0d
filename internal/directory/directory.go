// Package directory maintains a time-bounded snapshot of the RDS instance
// list. Every tool resolves user-supplied names against this snapshot, so
// it is refreshed at most once per TTL regardless of call volume.
package directory

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"go.uber.org/zap"

	"github.com/neoai-agent/rds-mcp/internal/awsx"
)

// DefaultTTL is how long a fetched snapshot stays valid.
const DefaultTTL = 5 * time.Minute

// Instance is an immutable view of one RDS instance. Snapshots are replaced
// wholesale on refresh; entries are never mutated in place.
type Instance struct {
	Identifier       string `json:"identifier"`
	Engine           string `json:"engine"`
	Status           string `json:"status"`
	EndpointAddress  string `json:"endpoint_address,omitempty"`
	EndpointPort     int32  `json:"endpoint_port,omitempty"`
	ResourceID       string `json:"resource_id"`
	AllocatedStorage int32  `json:"allocated_storage"`
}

// Cache holds the instance directory snapshot. Readers see either no data
// or one complete snapshot, never a partial list.
type Cache struct {
	api    awsx.RDSAPI
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	snapshot  []Instance
	fetchedAt time.Time
}

// New creates an instance directory cache. A ttl of 0 selects DefaultTTL.
func New(api awsx.RDSAPI, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		api:    api,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// List returns the cached snapshot, refreshing it from the control plane
// when expired. A failed refresh returns the error and leaves any existing
// snapshot untouched.
func (c *Cache) List(ctx context.Context) ([]Instance, error) {
	c.mu.RLock()
	if c.validLocked() {
		snapshot := c.snapshot
		c.mu.RUnlock()
		c.logger.Debug("Returning cached RDS instance directory", zap.Int("count", len(snapshot)))
		return snapshot, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited for the write lock.
	if c.validLocked() {
		return c.snapshot, nil
	}

	out, err := c.api.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		c.logger.Error("Failed to refresh RDS instance directory", zap.Error(err))
		return nil, err
	}

	snapshot := make([]Instance, 0, len(out.DBInstances))
	for _, db := range out.DBInstances {
		inst := Instance{
			Identifier:       aws.ToString(db.DBInstanceIdentifier),
			Engine:           aws.ToString(db.Engine),
			Status:           aws.ToString(db.DBInstanceStatus),
			ResourceID:       aws.ToString(db.DbiResourceId),
			AllocatedStorage: aws.ToInt32(db.AllocatedStorage),
		}
		if db.Endpoint != nil {
			inst.EndpointAddress = aws.ToString(db.Endpoint.Address)
			inst.EndpointPort = aws.ToInt32(db.Endpoint.Port)
		}
		snapshot = append(snapshot, inst)
	}

	c.snapshot = snapshot
	c.fetchedAt = c.now()
	c.logger.Info("Refreshed RDS instance directory", zap.Int("count", len(snapshot)))

	return snapshot, nil
}

// Identifiers returns the instance identifiers from the current snapshot,
// refreshing it if needed.
func (c *Cache) Identifiers(ctx context.Context) ([]string, error) {
	instances, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(instances))
	for i, inst := range instances {
		ids[i] = inst.Identifier
	}
	return ids, nil
}

// Lookup returns the snapshot entry for an exact identifier, if present.
func (c *Cache) Lookup(ctx context.Context, identifier string) (Instance, bool, error) {
	instances, err := c.List(ctx)
	if err != nil {
		return Instance{}, false, err
	}
	for _, inst := range instances {
		if inst.Identifier == identifier {
			return inst, true, nil
		}
	}
	return Instance{}, false, nil
}

// validLocked reports snapshot freshness. Callers must hold mu.
func (c *Cache) validLocked() bool {
	return !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl
}
