package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"anoa.com/coursemarket/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Creator{},
		&entity.Course{},
		&entity.Enrollment{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the development admin account if the email is not taken yet.
func SeedAdminUser(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		slog.Info("admin user already exists, skipping seed", "email", email)
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	adminUser := entity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		Role:         entity.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	slog.Info("admin user seeded", "email", email)
	return nil
}
