package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gymplanner/gymplanner/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.GroupMuscle{}, &models.Exercise{}, &models.Workout{}, &models.ExerciseInWorkout{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) (*models.GroupMuscle, *models.Exercise) {
	t.Helper()
	g := models.GroupMuscle{Name: "Legs", Description: "Lower body"}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	e := models.Exercise{Name: "Squat", Description: "Barbell squat", GroupMuscleID: g.ID}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed exercise: %v", err)
	}
	return &g, &e
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := models.User{Name: "Test", Email: email, Password: "x", Role: models.RoleUser}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &u
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }
