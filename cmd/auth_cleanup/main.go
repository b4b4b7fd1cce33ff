package main

import (
	"context"
	"log"
	"time"

	"schoolauth/internal/app"
	"schoolauth/internal/config"
	"schoolauth/internal/database"
	"schoolauth/internal/repository"
)

// Deletes expired refresh tokens. Meant to run from cron; with the redis
// store there is nothing to sweep because keys carry their own TTL.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deps := app.Deps{Config: cfg, DB: db}
	if cfg.RefreshStore == config.RefreshStoreRedis {
		client, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis connect failed: %v", err)
		}
		defer client.Close()
		deps.Redis = client
	}

	a, err := app.New(deps)
	if err != nil {
		log.Fatalf("app init failed: %v", err)
	}

	n, err := a.Refresh.DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("cleanup refresh_tokens failed: %v", err)
	}

	log.Printf("auth cleanup completed: refresh_tokens=%d", n)
}
