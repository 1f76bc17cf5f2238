package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowHonoursBurstPerKey(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60, 2)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("user-1", "upload")
	assert.True(t, ok)
	ok, _ = rl.Allow("user-1", "upload")
	assert.True(t, ok)

	ok, wait := rl.Allow("user-1", "upload")
	assert.False(t, ok)
	assert.InDelta(t, time.Second, wait, float64(10*time.Millisecond))

	ok, _ = rl.Allow("user-2", "upload")
	assert.True(t, ok, "other users have their own bucket")

	now = now.Add(time.Second)
	ok, _ = rl.Allow("user-1", "upload")
	assert.True(t, ok)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60, 1)
	rl.now = func() time.Time { return now }

	rl.Allow("user-1", "upload")
	now = now.Add(30 * time.Minute)
	rl.Allow("user-2", "upload")

	now = now.Add(45 * time.Minute)
	rl.Cleanup()

	assert.NotContains(t, rl.buckets, "user-1:upload")
	assert.Contains(t, rl.buckets, "user-2:upload")
}
