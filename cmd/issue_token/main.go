package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
)

// issue_token upserts a development user and prints a session token for it.
// With STORE_DRIVER=memory no user row is written.
func main() {
	userID := flag.String("user", "dev-user", "user id (token subject)")
	name := flag.String("name", "Developer", "display name")
	email := flag.String("email", "dev@example.com", "email")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	ctx := context.Background()

	if cfg.StoreDriver == config.StoreDriverPostgres {
		pool := db.Connect(ctx, cfg.DatabaseURL)
		defer pool.Close()

		u := &domain.User{ID: *userID, Name: *name, Email: *email}
		if err := repository.NewUserRepository(pool).Upsert(ctx, u); err != nil {
			logger.Fatal("upsert user failed", "error", err, "user_id", *userID)
		}
		logger.Info("user ready", "user_id", u.ID, "created_at", u.CreatedAt)
	}

	m := auth.NewJWTManager(auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.TokenTTL})
	token, err := m.Issue(*userID)
	if err != nil {
		logger.Fatal("failed to issue token", "error", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
