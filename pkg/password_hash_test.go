package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	passwordHash, err := HashPassword("burn")
	require.NoError(t, err)
	assert.NotEmpty(t, passwordHash)
	assert.True(t, CheckPasswordHash("burn", passwordHash))
	assert.False(t, CheckPasswordHash("not-burn", passwordHash))

	otherHash, err := HashPassword("burn")
	require.NoError(t, err)
	// bcrypt salts, the two hashes differ but both check out
	assert.NotEqual(t, passwordHash, otherHash)
	assert.True(t, CheckPasswordHash("burn", otherHash))
}
