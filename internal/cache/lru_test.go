package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-engine/internal/domain"
)

func TestLRUCache_GetSet(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)

	ctx := context.Background()
	bundle := domain.ExplanationBundle{Summary: "s", Mechanism: "m", ClinicalImpact: "c"}

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "CODEINE|CYP2D6|*4/*4|Toxic", bundle))

	got, ok := c.Get(ctx, "CODEINE|CYP2D6|*4/*4|Toxic")
	require.True(t, ok)
	assert.Equal(t, bundle, got)
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	c, err := NewLRUCache(2)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("key-%d", i), domain.ExplanationBundle{Summary: "s"}))
	}

	_, ok := c.Get(ctx, "key-0")
	assert.False(t, ok, "oldest entry must be evicted")
	_, ok = c.Get(ctx, "key-2")
	assert.True(t, ok)
}

func TestNewLRUCache_DefaultSize(t *testing.T) {
	c, err := NewLRUCache(0)
	require.NoError(t, err)
	require.NotNil(t, c)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", domain.ExplanationBundle{Summary: "s"}))
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)
}
