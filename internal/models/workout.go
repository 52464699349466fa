package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workout is owned exclusively by its creating user. Day is a weekday slot
// in 1..7.
type Workout struct {
	ID          string              `gorm:"primaryKey;type:text" json:"id"`
	Title       string              `gorm:"not null" json:"title"`
	Description string              `json:"description"`
	Day         int                 `gorm:"not null" json:"day"`
	UserID      string              `gorm:"not null;index" json:"userId"`
	Exercises   []ExerciseInWorkout `gorm:"foreignKey:WorkoutID" json:"exercises"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func (w *Workout) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// OwnerID implements policy.Ownable.
func (w *Workout) OwnerID() string { return w.UserID }

// ExerciseInWorkout is one prescribed exercise inside a workout. Ownership
// is transitive through WorkoutID; it carries no owner column of its own.
type ExerciseInWorkout struct {
	ID         string `gorm:"primaryKey;type:text" json:"id"`
	WorkoutID  string `gorm:"not null;index" json:"workoutId"`
	ExerciseID string `gorm:"not null;index" json:"exerciseId"`
	Series     int    `gorm:"not null" json:"series"`
	Reps       int    `gorm:"not null" json:"reps"`
	// Pointer so an unloaded association is omitted from JSON instead of
	// serializing as a zero-valued object.
	Exercise *Exercise `gorm:"foreignKey:ExerciseID" json:"exercise,omitempty"`
}

func (e *ExerciseInWorkout) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
