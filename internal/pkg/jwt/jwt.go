package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretLen = 32

var (
	ErrSigningConfiguration = errors.New("jwt signing configuration invalid")
	ErrInvalidToken         = errors.New("invalid token")
)

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Identity is the authenticated subject an access token is issued for.
type Identity struct {
	ID    int64
	Email string
	Roles []string
}

type Claims struct {
	UserID int64    `json:"uid,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwtlib.RegisteredClaims
}

// Email is the token subject.
func (c *Claims) Email() string {
	return c.Subject
}

func New(secret string, ttl time.Duration) (*Service, error) {
	if len(strings.TrimSpace(secret)) < minSecretLen {
		return nil, fmt.Errorf("%w: secret must be at least %d bytes", ErrSigningConfiguration, minSecretLen)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: access token ttl must be > 0", ErrSigningConfiguration)
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *Service) IssueAccessToken(id Identity) (string, error) {
	return s.sign(Claims{
		UserID: id.ID,
		Roles:  id.Roles,
	}, id.Email)
}

// IssueAccessTokenForEmail signs a token carrying only the subject email.
func (s *Service) IssueAccessTokenForEmail(email string) (string, error) {
	return s.sign(Claims{}, email)
}

func (s *Service) sign(claims Claims, subject string) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwtlib.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningConfiguration, err)
	}
	return signed, nil
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
