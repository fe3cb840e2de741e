package idempotency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreClaim(t *testing.T) {
	store := NewMemoryStore()

	ok, err := store.Claim(context.Background(), "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(context.Background(), "req-1")
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same id must be rejected")

	ok, err = store.Claim(context.Background(), "req-2")
	require.NoError(t, err)
	assert.True(t, ok)
}
