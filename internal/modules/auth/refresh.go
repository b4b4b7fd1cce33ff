package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"schoolauth/internal/domain"
	"schoolauth/internal/repository"
)

// RefreshTokenService owns the refresh token lifecycle: issue, look up,
// expire, revoke. Storage is delegated to a RefreshTokenRepository.
type RefreshTokenService struct {
	repo   RefreshTokenRepository
	ttl    time.Duration
	pepper string
	now    func() time.Time
}

func NewRefreshTokenService(repo RefreshTokenRepository, ttl time.Duration, pepper string) *RefreshTokenService {
	return &RefreshTokenService{
		repo:   repo,
		ttl:    ttl,
		pepper: pepper,
		now:    time.Now,
	}
}

// Create issues a fresh token for userID, superseding any token the user held.
func (s *RefreshTokenService) Create(ctx context.Context, userID int64) (*domain.RefreshToken, error) {
	raw, err := generateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now()
	t := &domain.RefreshToken{
		UserID:    userID,
		Token:     raw,
		TokenHash: hashTokenWithPepper(raw, s.pepper),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	return t, nil
}

func (s *RefreshTokenService) FindByToken(ctx context.Context, raw string) (*domain.RefreshToken, error) {
	t, err := s.repo.GetByHash(ctx, hashTokenWithPepper(raw, s.pepper))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	t.Token = raw
	return t, nil
}

// VerifyExpiration returns t unchanged while it is live. An expired token is
// deleted before ErrRefreshTokenExpired is returned.
func (s *RefreshTokenService) VerifyExpiration(ctx context.Context, t *domain.RefreshToken) (*domain.RefreshToken, error) {
	if !t.IsExpired(s.now()) {
		return t, nil
	}
	if err := s.repo.Delete(ctx, t); err != nil {
		return nil, fmt.Errorf("delete expired refresh token: %w", err)
	}
	return nil, ErrRefreshTokenExpired
}

func (s *RefreshTokenService) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	return s.repo.DeleteByUserID(ctx, userID)
}

func (s *RefreshTokenService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}
