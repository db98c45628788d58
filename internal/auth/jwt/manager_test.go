package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(strings.Repeat("a", 32), "test", ttl)
}

func TestManager_IssueAndValidate(t *testing.T) {
	manager := newTestManager(24 * time.Hour)

	token, sessionID, expiresAt, err := manager.Issue("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, sessionID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, sessionID, claims.ID)
	assert.Equal(t, "test", claims.Issuer)
}

func TestManager_Validate_Expired(t *testing.T) {
	manager := newTestManager(-time.Minute)

	token, _, _, err := manager.Issue("user-1")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_Validate_Invalid(t *testing.T) {
	manager := newTestManager(24 * time.Hour)

	_, err := manager.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 换密钥签发的令牌不可用
	other := NewManager(strings.Repeat("b", 32), "test", 24*time.Hour)
	token, _, _, err := other.Issue("user-1")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_SessionIDsUnique(t *testing.T) {
	manager := newTestManager(24 * time.Hour)

	_, first, _, err := manager.Issue("user-1")
	require.NoError(t, err)
	_, second, _, err := manager.Issue("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
