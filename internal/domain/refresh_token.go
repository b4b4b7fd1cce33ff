package domain

import "time"

// RefreshToken is the single live refresh credential of a user.
//
// Only the SHA-256 hash of the token is persisted. Token carries the raw
// value back to the caller right after creation or lookup and is never
// written to storage.
type RefreshToken struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
