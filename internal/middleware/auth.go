package middleware

import (
	"context"
	"net/http"
	"strings"

	"schoolauth/internal/domain"
	jwtsvc "schoolauth/internal/pkg/jwt"
	"schoolauth/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	PrincipalKey = "principal"
	UserIDKey    = "user_id"
)

type TokenVerifier interface {
	ValidateToken(token string) (*jwtsvc.Claims, error)
}

// PrincipalLookup resolves the token subject to a stored user.
type PrincipalLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type authFailure struct {
	code    string
	message string
}

var (
	errHeaderMissing = &authFailure{"AUTH_HEADER_MISSING", "Missing Authorization header"}
	errBadFormat     = &authFailure{"INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>"}
	errInvalidToken  = &authFailure{"INVALID_TOKEN", "Invalid or expired token"}
)

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(tokens TokenVerifier, users PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, failure := authenticate(c, tokens, users)
		if failure != nil {
			response.Abort(c, http.StatusUnauthorized, failure.code, failure.message)
			return
		}
		setPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid bearer token is present
// and lets the request through either way.
func OptionalAuth(tokens TokenVerifier, users PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, failure := authenticate(c, tokens, users); failure == nil {
			setPrincipal(c, principal)
		}
		c.Next()
	}
}

// CurrentPrincipal returns the principal set by JWTAuth or OptionalAuth.
func CurrentPrincipal(c *gin.Context) (*domain.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*domain.Principal)
	return p, ok && p != nil
}

func authenticate(c *gin.Context, tokens TokenVerifier, users PrincipalLookup) (*domain.Principal, *authFailure) {
	h := c.GetHeader("Authorization")
	if h == "" {
		return nil, errHeaderMissing
	}
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, errBadFormat
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if tokenStr == "" {
		return nil, errBadFormat
	}

	claims, err := tokens.ValidateToken(tokenStr)
	if err != nil {
		return nil, errInvalidToken
	}

	user, err := users.GetByEmail(c.Request.Context(), claims.Email())
	if err != nil {
		return nil, errInvalidToken
	}
	return domain.PrincipalOf(user), nil
}

func setPrincipal(c *gin.Context, p *domain.Principal) {
	c.Set(PrincipalKey, p)
	c.Set(UserIDKey, p.ID)
}
