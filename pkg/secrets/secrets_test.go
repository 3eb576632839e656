package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "userhub/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		hash, err := Hash("secret1")
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", hash)
		assert.NoError(t, Verify("secret1", hash))
	})

	t.Run("mismatch is unauthorized", func(t *testing.T) {
		hash, err := Hash("secret1")
		require.NoError(t, err)
		err = Verify("wrong", hash)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("empty password rejected", func(t *testing.T) {
		_, err := Hash("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		h1, err := Hash("secret1")
		require.NoError(t, err)
		h2, err := Hash("secret1")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}
