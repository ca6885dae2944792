package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/rental/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(42, "ops@example.com", "ops")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "rental", claims.Issuer)
	assert.InDelta(t, time.Hour.Seconds(), claims.TTL(time.Now()).Seconds(), 5)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refresh.UserID)
	assert.Empty(t, refresh.Email)
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, time.Hour)
	pair, err := m.GenerateToken(1, "", "")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
}

func TestParseToken_WrongSecret(t *testing.T) {
	pair, err := NewManager("a", time.Hour, time.Hour).GenerateToken(1, "", "")
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour, time.Hour).ParseToken(pair.AccessToken)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := NewManager("a", time.Hour, time.Hour).ParseToken("not-a-token")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}
