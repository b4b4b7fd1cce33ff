package auth

import "errors"

var (
	ErrDuplicateUser        = errors.New("user already exists with this email")
	ErrPasswordTooLong      = errors.New("password must be at most 72 bytes")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRefreshTokenNotFound = errors.New("refresh token is not in database")
	ErrRefreshTokenExpired  = errors.New("refresh token was expired")
)
