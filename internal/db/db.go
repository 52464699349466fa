// Package db handles database connection, schema migration, and seed data.
package db

import (
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gymplanner/gymplanner/internal/config"
	"github.com/gymplanner/gymplanner/internal/models"
)

// Connect opens the PostgreSQL connection using config.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold: 1500 * time.Millisecond,
			LogLevel:      logger.Warn,
		},
	)
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gormLogger})
}

// Migrate runs AutoMigrate for all models.
// Call this at application startup or as part of a migration step.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.GroupMuscle{},
		&models.Exercise{},
		&models.Workout{},
		&models.ExerciseInWorkout{},
	)
}

// Seed bootstraps an admin account from ADMIN_EMAIL/ADMIN_PASSWORD when the
// users table has no admin yet. A missing env pair is not an error; the API
// then simply starts with no admin.
func Seed(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     "Administrator",
		Email:    strings.ToLower(email),
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	return db.Create(&admin).Error
}
