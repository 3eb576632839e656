package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/platform/config"
)

func TestNewUnconfigured(t *testing.T) {
	c, err := New(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(config.RedisConfig{URL: "not-a-redis-url"})
	require.Error(t, err)
}

func TestCounterDelta(t *testing.T) {
	assert.Equal(t, float64(5), counterDelta(15, 10))
	assert.Equal(t, float64(0), counterDelta(10, 10))

	// A sample below the previous one indicates a pool reset; the delta must
	// not wrap around to ~2^32.
	assert.Equal(t, float64(0), counterDelta(3, 10))
}
