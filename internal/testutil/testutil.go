// Package testutil provides sqlite-backed databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"anoa.com/coursemarket/internal/bootstrap"
	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of every fixture user.
const Password = "password123"

// NewTestDB opens an isolated in-memory database with the full schema migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

var passwordHash string

func hashedPassword(t *testing.T) string {
	t.Helper()
	if passwordHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		passwordHash = string(h)
	}
	return passwordHash
}

// CreateUser inserts a user with the given role and Password.
func CreateUser(t *testing.T, db *gorm.DB, role string) *entity.User {
	t.Helper()
	id := uuid.New()
	user := &entity.User{
		ID:           id,
		Name:         "User " + id.String()[:8],
		Email:        id.String()[:8] + "@example.com",
		PasswordHash: hashedPassword(t),
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateCreator inserts a CREATOR user together with its creator profile.
func CreateCreator(t *testing.T, db *gorm.DB) (*entity.User, *entity.Creator) {
	t.Helper()
	user := CreateUser(t, db, entity.RoleCreator)
	creator := &entity.Creator{UserID: user.ID}
	if err := db.Create(creator).Error; err != nil {
		t.Fatalf("create creator: %v", err)
	}
	return user, creator
}

// CreateCourse inserts a valid course owned by creator.
func CreateCourse(t *testing.T, db *gorm.DB, creator *entity.Creator, published bool) *entity.Course {
	t.Helper()
	course := &entity.Course{
		CreatorID:   creator.ID,
		Title:       "Practical Go",
		Description: "Build production services in Go.",
		Category:    "Programming",
		Level:       entity.LevelBeginner,
		Price:       49.99,
		Duration:    12,
		ImageURL:    "https://images.example.com/go.png",
		IsPublished: published,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

// Enroll inserts an enrollment row directly.
func Enroll(t *testing.T, db *gorm.DB, user *entity.User, course *entity.Course) *entity.Enrollment {
	t.Helper()
	e := &entity.Enrollment{UserID: user.ID, CourseID: course.ID}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	return e
}
