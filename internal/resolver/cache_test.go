package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoCache_GetSet(t *testing.T) {
	cache := newMemoCache(4)

	_, ok := cache.get("payments")
	assert.False(t, ok)

	cache.set("payments", "payments-prod-1")
	got, ok := cache.get("payments")
	assert.True(t, ok)
	assert.Equal(t, "payments-prod-1", got)
}

func TestMemoCache_KeysAreVerbatim(t *testing.T) {
	cache := newMemoCache(4)
	cache.set("Payments", "payments-prod-1")

	_, ok := cache.get("payments")
	assert.False(t, ok, "lookup must not normalize case")

	_, ok = cache.get(" Payments")
	assert.False(t, ok, "lookup must not trim whitespace")
}

func TestMemoCache_LastWriteWins(t *testing.T) {
	cache := newMemoCache(4)
	cache.set("payments", "old-id")
	cache.set("payments", "new-id")

	got, _ := cache.get("payments")
	assert.Equal(t, "new-id", got)
	assert.Equal(t, 1, cache.size())
}

func TestMemoCache_EvictsOldestAtCapacity(t *testing.T) {
	cache := newMemoCache(3)
	for i := 0; i < 3; i++ {
		cache.set(fmt.Sprintf("name-%d", i), fmt.Sprintf("id-%d", i))
	}
	assert.Equal(t, 3, cache.size())

	cache.set("name-3", "id-3")
	assert.Equal(t, 3, cache.size(), "size must stay bounded")

	_, ok := cache.get("name-3")
	assert.True(t, ok, "newest entry must survive the eviction")
}
