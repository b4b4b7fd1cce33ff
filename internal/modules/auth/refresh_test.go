package auth

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"schoolauth/internal/domain"
	"schoolauth/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := generateOpaqueToken()
	require.NoError(t, err)
	b, err := generateOpaqueToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	decoded, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestHashTokenWithPepper(t *testing.T) {
	h := hashTokenWithPepper("token", "pepper")

	assert.Len(t, h, 64)
	assert.Equal(t, h, hashTokenWithPepper("token", "pepper"))
	assert.NotEqual(t, h, hashTokenWithPepper("token", "other"))
}

func TestRefreshTokenService_Create(t *testing.T) {
	repo := new(mockRefreshTokenRepo)
	svc := NewRefreshTokenService(repo, 2*time.Hour, "pepper")
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	rt, err := svc.Create(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), rt.UserID)
	assert.Equal(t, fixed.Add(2*time.Hour), rt.ExpiresAt)
	assert.Equal(t, hashTokenWithPepper(rt.Token, "pepper"), rt.TokenHash)
}

func TestRefreshTokenService_VerifyExpiration(t *testing.T) {
	repo := new(mockRefreshTokenRepo)
	svc := NewRefreshTokenService(repo, time.Hour, "pepper")
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	t.Run("live token is returned unchanged", func(t *testing.T) {
		live := &domain.RefreshToken{UserID: 1, ExpiresAt: fixed.Add(time.Second)}
		got, err := svc.VerifyExpiration(context.Background(), live)
		require.NoError(t, err)
		assert.Same(t, live, got)
	})

	t.Run("expiry instant is still live", func(t *testing.T) {
		edge := &domain.RefreshToken{UserID: 1, ExpiresAt: fixed}
		_, err := svc.VerifyExpiration(context.Background(), edge)
		assert.NoError(t, err)
	})

	t.Run("expired token is deleted", func(t *testing.T) {
		dead := &domain.RefreshToken{UserID: 1, ExpiresAt: fixed.Add(-time.Second)}
		repo.On("Delete", mock.Anything, dead).Return(nil).Once()

		_, err := svc.VerifyExpiration(context.Background(), dead)
		assert.ErrorIs(t, err, ErrRefreshTokenExpired)
		repo.AssertExpectations(t)
	})
}

func TestRefreshTokenService_DeleteExpired(t *testing.T) {
	repo := new(mockRefreshTokenRepo)
	svc := NewRefreshTokenService(repo, time.Hour, "pepper")
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	repo.On("DeleteExpired", mock.Anything, fixed).Return(int64(3), nil)

	n, err := svc.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRefreshTokenService_FindByToken_NotFound(t *testing.T) {
	repo := new(mockRefreshTokenRepo)
	svc := NewRefreshTokenService(repo, time.Hour, "pepper")

	repo.On("GetByHash", mock.Anything, hashTokenWithPepper("missing", "pepper")).Return(nil, repository.ErrNotFound)

	_, err := svc.FindByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}
