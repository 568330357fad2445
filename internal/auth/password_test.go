package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	// Cost 4 keeps the test fast; production uses DefaultBcryptCost.
	hash, err := HashPassword("hunter2hunter2", 4)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPassword("hunter2hunter2", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}

func TestHashPasswordDefaultCost(t *testing.T) {
	hash, err := HashPassword("hunter2", 0)
	require.NoError(t, err)
	assert.True(t, CheckPassword("hunter2", hash))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	a, err := HashPassword("same-password", 4)
	require.NoError(t, err)
	b, err := HashPassword("same-password", 4)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
