package repository

import (
	"context"
	"testing"
	"time"

	"schoolauth/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisRefreshTokenRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisRefreshTokenRepository(rdb, "test"), mr
}

func TestRedisRefreshTokenRepository_SaveAndGet(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()
	now := time.Now()

	tok := &domain.RefreshToken{UserID: 1, TokenHash: "hash-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, repo.Save(ctx, tok))
	assert.Equal(t, int64(1), tok.ID)

	got, err := repo.GetByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "hash-1", got.TokenHash)
	assert.WithinDuration(t, now.Add(time.Hour), got.ExpiresAt, time.Second)

	assert.True(t, mr.Exists("test:rt:token:hash-1"))
	userPtr, err := mr.Get("test:rt:user:1")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", userPtr)
}

func TestRedisRefreshTokenRepository_SaveReplacesPerUser(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "hash-1", ExpiresAt: exp}))
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "hash-2", ExpiresAt: exp}))

	_, err := repo.GetByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("test:rt:token:hash-1"))

	_, err = repo.GetByHash(ctx, "hash-2")
	assert.NoError(t, err)
}

func TestRedisRefreshTokenRepository_ExpiredRecordStaysReadable(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Minute)}))

	mr.FastForward(2 * time.Minute)
	_, err := repo.GetByHash(ctx, "hash-1")
	assert.NoError(t, err)

	mr.FastForward(expiredRetention)
	_, err = repo.GetByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRefreshTokenRepository_Delete(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	tok := &domain.RefreshToken{UserID: 1, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, tok))

	require.NoError(t, repo.Delete(ctx, tok))
	assert.False(t, mr.Exists("test:rt:token:hash-1"))
	assert.False(t, mr.Exists("test:rt:user:1"))
}

func TestRedisRefreshTokenRepository_DeleteKeepsNewerPointer(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	stale := &domain.RefreshToken{UserID: 1, TokenHash: "hash-1", ExpiresAt: exp}
	require.NoError(t, repo.Save(ctx, stale))
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "hash-2", ExpiresAt: exp}))

	require.NoError(t, repo.Delete(ctx, stale))

	userPtr, err := mr.Get("test:rt:user:1")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", userPtr)
}

func TestRedisRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: 1, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := repo.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = repo.GetByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRefreshTokenRepository_DeleteExpiredIsNoop(t *testing.T) {
	repo, _ := newRedisRepo(t)

	n, err := repo.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
