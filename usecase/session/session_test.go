package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/internal/infrastructure/docstore"
	boltRepo "github.com/planpin/backend/repository/bolt"
	redisRepo "github.com/planpin/backend/repository/redis"
)

const testSecret = "test-secret"

func newTestUseCase(t *testing.T) (*UseCase, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	stores, err := docstore.NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	uc := New(
		boltRepo.NewProvider(stores),
		redisRepo.NewSessionRepository(client, time.Hour),
		Config{TTL: time.Hour, JWTSecret: testSecret, JWTIssuer: "planpin"},
		zap.NewNop(),
	)
	return uc, mr
}

func TestLogin(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	res, err := uc.Login(ctx, "  alice  ")
	require.NoError(t, err)

	assert.Equal(t, "alice", res.Session.UserID)
	assert.Equal(t, "alice", res.User.ID)
	assert.NotEmpty(t, res.Session.ID)
	assert.NotEmpty(t, res.Token)

	// The token carries the identity the middleware extracts later.
	token, err := jwt.Parse(res.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["user_id"])
	assert.Equal(t, res.Session.ID, claims["session_id"])
}

func TestLoginRejectsBlankName(t *testing.T) {
	uc, _ := newTestUseCase(t)

	_, err := uc.Login(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestLoginIsIdempotentPerName(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	first, err := uc.Login(ctx, "alice")
	require.NoError(t, err)
	second, err := uc.Login(ctx, "alice")
	require.NoError(t, err)

	// The user document survives, its creation time untouched.
	assert.Equal(t, first.User.CreatedAt, second.User.CreatedAt)
	assert.NotEqual(t, first.Session.ID, second.Session.ID)
}

func TestRestore(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	login, err := uc.Login(ctx, "alice")
	require.NoError(t, err)

	res, err := uc.Restore(ctx, login.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.ID)
	assert.Equal(t, login.Session.ID, res.Session.ID)
}

func TestRestoreMissingSession(t *testing.T) {
	uc, _ := newTestUseCase(t)

	_, err := uc.Restore(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = uc.Restore(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRestoreExpiredSessionClearsRecord(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	login, err := uc.Login(ctx, "alice")
	require.NoError(t, err)

	// Overwrite the record with one whose own expiry has lapsed, the state
	// a stale client leaves behind before the key TTL fires.
	lapsed := &domain.Session{
		ID:        login.Session.ID,
		UserID:    "alice",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, uc.sessions.Save(ctx, lapsed))

	_, err = uc.Restore(ctx, login.Session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The record is gone, not merely rejected.
	_, err = uc.sessions.Get(ctx, login.Session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestConcurrentRestoresCollapse(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	login, err := uc.Login(ctx, "alice")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.Restore(ctx, login.Session.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "alice", results[i].User.ID)
	}
}

func TestLogoutKeepsUserData(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	login, err := uc.Login(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, login.Session.ID))

	_, err = uc.Restore(ctx, login.Session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Logging in again finds the same user document on disk.
	again, err := uc.Login(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, login.User.CreatedAt, again.User.CreatedAt)

	// Logout with no session id is a no-op.
	assert.NoError(t, uc.Logout(ctx, ""))
}
