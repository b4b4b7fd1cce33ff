package repository

import "gorm.io/gorm"

// Migrate creates or updates the users and refresh_tokens tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &refreshTokenModel{})
}
