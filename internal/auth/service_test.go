package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxhub/backend/internal/auth/jwt"
	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage/memory"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	manager := jwt.NewManager(strings.Repeat("a", 32), "test", ttl)
	return NewService(store, manager, NewMemoryRevocationStore()), store
}

func seedUser(t *testing.T, store *memory.Store, email, password string) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     "tester",
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.CreateUser(user))
	return user
}

func TestService_LoginAndResolve(t *testing.T) {
	service, store := newTestService(t, 24*time.Hour)
	user := seedUser(t, store, "a@example.com", "secret")

	session, loggedIn, err := service.Login("a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, user.ID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)

	identity, err := service.Resolve(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, session.ID, identity.SessionID)
}

func TestService_Login_EmailCaseInsensitive(t *testing.T) {
	service, store := newTestService(t, 24*time.Hour)
	seedUser(t, store, "a@example.com", "secret")

	_, _, err := service.Login("A@Example.COM", "secret")
	assert.NoError(t, err)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	service, store := newTestService(t, 24*time.Hour)
	seedUser(t, store, "a@example.com", "secret")

	_, _, err := service.Login("a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login("nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_InactiveUser(t *testing.T) {
	service, store := newTestService(t, 24*time.Hour)

	hash, err := HashPassword("secret")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, store.CreateUser(&domain.User{
		ID:           uuid.NewString(),
		Username:     "inactive",
		Email:        "a@example.com",
		PasswordHash: hash,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	_, _, err = service.Login("a@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Resolve_Unauthenticated(t *testing.T) {
	service, _ := newTestService(t, 24*time.Hour)

	_, err := service.Resolve("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = service.Resolve("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestService_Resolve_ExpiredSession(t *testing.T) {
	service, store := newTestService(t, -time.Minute)
	seedUser(t, store, "a@example.com", "secret")

	session, _, err := service.Login("a@example.com", "secret")
	require.NoError(t, err)

	// 有效期为负模拟 24 小时窗口已过
	_, err = service.Resolve(session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestService_Logout(t *testing.T) {
	service, store := newTestService(t, 24*time.Hour)
	seedUser(t, store, "a@example.com", "secret")

	session, _, err := service.Login("a@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, service.Logout(session.Token))

	// 注销后的会话不再可用
	_, err = service.Resolve(session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// 幂等：重复注销、注销非法令牌都不是错误
	assert.NoError(t, service.Logout(session.Token))
	assert.NoError(t, service.Logout("garbage"))
	assert.NoError(t, service.Logout(""))
}

func TestService_Logout_DoesNotAffectOtherSessions(t *testing.T) {
	service, store := newTestService(t, 24*time.Hour)
	seedUser(t, store, "a@example.com", "secret")

	first, _, err := service.Login("a@example.com", "secret")
	require.NoError(t, err)
	second, _, err := service.Login("a@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, service.Logout(first.Token))

	_, err = service.Resolve(first.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = service.Resolve(second.Token)
	assert.NoError(t, err)
}
