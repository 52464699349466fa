// Package policy implements the ownership guard applied to every
// user-scoped workout operation. Admin routes never consult it; the role
// gate and the ownership gate stay independently testable.
package policy

import (
	"github.com/gymplanner/gymplanner/internal/apperr"
	"github.com/gymplanner/gymplanner/internal/models"
	"gorm.io/gorm"
)

// Ownable is implemented by resources that record an owning user.
type Ownable interface {
	OwnerID() string
}

// AssertOwnership compares a resource's recorded owner with the requester.
func AssertOwnership(res Ownable, requesterID string) error {
	if res.OwnerID() != requesterID {
		return apperr.ErrForbidden
	}
	return nil
}

// WorkoutByID resolves a workout and checks the requester owns it. The
// lookup miss is reported before the ownership comparison: NotFound and
// Forbidden are deliberately distinguishable, admins are fully trusted in
// this system.
func WorkoutByID(db *gorm.DB, workoutID, requesterID string) (*models.Workout, error) {
	var w models.Workout
	if err := db.First(&w, "id = ?", workoutID).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	if err := AssertOwnership(&w, requesterID); err != nil {
		return nil, err
	}
	return &w, nil
}

// AssignmentByID resolves an assignment to its parent workout and checks
// ownership against the parent's recorded owner, never a denormalized copy.
func AssignmentByID(db *gorm.DB, assignmentID, requesterID string) (*models.ExerciseInWorkout, *models.Workout, error) {
	var a models.ExerciseInWorkout
	if err := db.First(&a, "id = ?", assignmentID).Error; err != nil {
		return nil, nil, apperr.FromStore(err)
	}
	w, err := WorkoutByID(db, a.WorkoutID, requesterID)
	if err != nil {
		return nil, nil, err
	}
	return &a, w, nil
}
