package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/searchhub/searchhub/internal/auth"
	"github.com/searchhub/searchhub/internal/config"
	"github.com/searchhub/searchhub/internal/domain/user"
	"github.com/searchhub/searchhub/internal/security"
)

type UserUpserter interface {
	Upsert(ctx context.Context, u user.User) error
}

// EnsureSeedUsers upserts the configured demo user and admin identities so
// both logins work on a fresh store. Passwords are bcrypt-hashed before
// they go anywhere near storage. Identities with empty credentials are
// skipped.
func EnsureSeedUsers(ctx context.Context, users UserUpserter, cfg config.Config) error {
	seeds := []struct {
		email    string
		password string
		name     string
		role     string
	}{
		{cfg.SeedUserEmail, cfg.SeedUserPassword, cfg.SeedUserName, auth.RoleUser},
		{cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName, auth.RoleAdmin},
	}

	now := time.Now().UTC()

	for _, s := range seeds {
		if s.email == "" || s.password == "" {
			continue
		}

		hash, err := security.HashPassword(s.password)

		if err != nil {
			return err
		}

		u := user.User{
			ID:           uuid.NewString(),
			Email:        s.email,
			PasswordHash: hash,
			Name:         s.name,
			Role:         s.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := users.Upsert(ctx, u); err != nil {
			return err
		}
	}

	return nil
}
