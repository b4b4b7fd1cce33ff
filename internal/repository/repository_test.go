package repository

import (
	"context"
	"testing"

	"schoolauth/internal/database"
	"schoolauth/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createStudent(t *testing.T, repo *UserRepository, email string) *domain.User {
	t.Helper()

	u := &domain.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "John",
		LastName:     "Doe",
		Kind:         domain.KindStudent,
		Roles:        []domain.Role{domain.RoleStudent},
		Student:      &domain.Student{StudentID: "STU001", StudentClass: "Class A"},
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
