package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimitWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := newMemoryRateLimitRepository(func() time.Time { return now })

	for want := int64(1); want <= 3; want++ {
		count, ttl, err := repo.Increment(ctx, "ip:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
		assert.Equal(t, time.Minute, ttl)
	}

	count, _, err := repo.Increment(ctx, "ip:5.6.7.8", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	now = now.Add(time.Minute)
	count, _, err = repo.Increment(ctx, "ip:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
