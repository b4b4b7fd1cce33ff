package main

import (
	"context"
	"errors"
	"log"
	"os"

	"schoolauth/internal/app"
	"schoolauth/internal/config"
	"schoolauth/internal/database"
	"schoolauth/internal/modules/auth"
	"schoolauth/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("load .env: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD is empty, skipping admin seed")
		return
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// admin seeding never touches refresh tokens, so the db store is enough here
	cfg.RefreshStore = config.RefreshStoreDB
	a, err := app.New(app.Deps{Config: cfg, DB: db})
	if err != nil {
		log.Fatalf("app init failed: %v", err)
	}

	admin, err := a.Auth.SignupAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword)
	switch {
	case errors.Is(err, auth.ErrDuplicateUser):
		log.Printf("Admin %s already exists", cfg.AdminEmail)
	case err != nil:
		log.Fatalf("create admin: %v", err)
	default:
		log.Printf("Admin created: %s (id=%d)", admin.Email, admin.ID)
	}
}
