package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "ROLE_STUDENT"
	RoleTeacher Role = "ROLE_TEACHER"
	RoleAdmin   Role = "ROLE_ADMIN"
)

// UserKind discriminates the account subtype. Kind-specific fields on User
// are only meaningful for the matching kind.
type UserKind string

const (
	KindStudent UserKind = "student"
	KindTeacher UserKind = "teacher"
	KindAdmin   UserKind = "admin"
)

// DefaultRole returns the role granted to a new account of this kind.
func (k UserKind) DefaultRole() Role {
	switch k {
	case KindStudent:
		return RoleStudent
	case KindTeacher:
		return RoleTeacher
	case KindAdmin:
		return RoleAdmin
	default:
		return ""
	}
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Kind         UserKind  `json:"kind"`
	Roles        []Role    `json:"roles"`
	Student      *Student  `json:"student,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Student holds the fields only a student account carries.
type Student struct {
	StudentID    string `json:"student_id"`
	StudentClass string `json:"student_class"`
}

func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, string(r))
	}
	return out
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
