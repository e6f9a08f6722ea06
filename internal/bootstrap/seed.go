package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/pkg/credential"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.Models()...)
}

type AdminSeed struct {
	Email    string
	Username string
	Password string
}

// SeedAdminUser creates the admin account once. An existing user with the
// same email is left untouched, whatever its role.
func SeedAdminUser(ctx context.Context, db *gorm.DB, hasher credential.Hasher, seed AdminSeed) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Username == "" {
		return false, errors.New("admin email and username are required")
	}
	if seed.Password == "" {
		return false, errors.New("ADMIN_PASSWORD is required to seed the admin user")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}

	if count > 0 {
		slog.InfoContext(ctx, "admin user already exists, skipping seed", slog.String("email", email))
		return false, nil
	}

	admin := &entity.User{
		Username: seed.Username,
		Email:    email,
		Role:     entity.RoleAdmin,
	}
	if err := admin.SetPassword(hasher, seed.Password); err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, err
	}

	slog.InfoContext(ctx, "admin user seeded", slog.String("email", email), slog.String("username", admin.Username))
	return true, nil
}
