package auth

import (
	"context"
	"time"

	"schoolauth/internal/domain"
	jwtsvc "schoolauth/internal/pkg/jwt"
)

// UserRepository is the part of the credential store the auth flow uses
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository stores refresh tokens, at most one per user
type RefreshTokenRepository interface {
	Save(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	Delete(ctx context.Context, t *domain.RefreshToken) error
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenIssuer interface {
	IssueAccessToken(id jwtsvc.Identity) (string, error)
	IssueAccessTokenForEmail(email string) (string, error)
}
