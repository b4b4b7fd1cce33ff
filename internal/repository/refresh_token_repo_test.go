package repository

import (
	"context"
	"testing"
	"time"

	"schoolauth/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenRepository_SaveReplacesPerUser(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := createStudent(t, users, "a@x.com")
	now := time.Now()

	first := &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, repo.Save(ctx, first))
	assert.NotZero(t, first.ID)

	second := &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-2", ExpiresAt: now.Add(2 * time.Hour), CreatedAt: now}
	require.NoError(t, repo.Save(ctx, second))

	_, err := repo.GetByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetByHash(ctx, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.WithinDuration(t, now.Add(2*time.Hour), got.ExpiresAt, time.Second)

	var count int64
	require.NoError(t, db.Model(&refreshTokenModel{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := createStudent(t, users, "a@x.com")
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := repo.DeleteByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRefreshTokenRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := createStudent(t, users, "a@x.com")
	tok := &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, tok))

	require.NoError(t, repo.Delete(ctx, tok))
	_, err := repo.GetByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshTokenRepository_SaveOverwritesRowInPlace(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := createStudent(t, users, "a@x.com")
	first := &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-2", ExpiresAt: time.Now().Add(time.Hour)}))

	got, err := repo.GetByHash(ctx, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestRefreshTokenRepository_DeleteKeepsRotatedToken(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := createStudent(t, users, "a@x.com")
	stale := &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Save(ctx, stale))

	// a rotation lands on the same row before the stale token is removed
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-2", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, repo.Delete(ctx, stale))

	_, err := repo.GetByHash(ctx, "hash-2")
	assert.NoError(t, err)
}

func TestRefreshTokenRepository_DeleteExpired(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	alice := createStudent(t, users, "alice@x.com")
	bob := createStudent(t, users, "bob@x.com")
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: alice.ID, TokenHash: "stale", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: bob.ID, TokenHash: "fresh", ExpiresAt: now.Add(time.Hour)}))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByHash(ctx, "fresh")
	assert.NoError(t, err)
}

func TestRefreshTokenRepository_CascadeOnUserDelete(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := createStudent(t, users, "a@x.com")
	require.NoError(t, repo.Save(ctx, &domain.RefreshToken{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, db.Delete(&userModel{}, user.ID).Error)

	_, err := repo.GetByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
