package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "userhub/pkg/domain-errors"
)

var expiresIn = 30 * 24 * time.Hour

var tokenService = NewService("test-signing-key", expiresIn)

func Test_Issue_RoundTrip(t *testing.T) {
	subject := uuid.NewString()
	signed, err := tokenService.Issue(subject, false)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokenService.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.UserID)
	assert.False(t, claims.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_Issue_AdminFlagPreserved(t *testing.T) {
	signed, err := tokenService.Issue("admin", true)
	require.NoError(t, err)

	claims, err := tokenService.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func Test_Issue_EmptySubject(t *testing.T) {
	_, err := tokenService.Issue("", false)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_Verify_InvalidToken(t *testing.T) {
	_, err := tokenService.Verify("invalid-token-string")
	require.ErrorContains(t, err, "invalid token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Verify_EmptyToken(t *testing.T) {
	_, err := tokenService.Verify("")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Verify_ExpiredToken(t *testing.T) {
	expired := NewService("test-signing-key", -time.Minute)
	signed, err := expired.Issue(uuid.NewString(), false)
	require.NoError(t, err)

	_, err = tokenService.Verify(signed)
	require.ErrorContains(t, err, "token expired")
}

func Test_Verify_WrongSigningKey(t *testing.T) {
	other := NewService("other-signing-key", expiresIn)
	signed, err := other.Issue(uuid.NewString(), false)
	require.NoError(t, err)

	_, err = tokenService.Verify(signed)
	require.ErrorContains(t, err, "invalid token")
}

func Test_Verify_RejectsUnexpectedAlgorithm(t *testing.T) {
	// alg=none tokens must never pass signature validation.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokenService.Verify(raw)
	require.Error(t, err)
}
