package services

import (
	"gorm.io/gorm"

	"github.com/gymplanner/gymplanner/internal/apperr"
	"github.com/gymplanner/gymplanner/internal/models"
	"github.com/gymplanner/gymplanner/internal/policy"
	"github.com/gymplanner/gymplanner/internal/validation"
)

// WorkoutService composes user-owned workouts from the shared catalog.
// Every operation takes the requester's id from the authenticated identity;
// the ownership guard runs before any mutation or scoped read.
type WorkoutService struct {
	DB *gorm.DB
}

func NewWorkoutService(db *gorm.DB) *WorkoutService { return &WorkoutService{DB: db} }

// AssignmentInput is one prescribed exercise in a create or add request.
type AssignmentInput struct {
	ExerciseID string `json:"exerciseId"`
	Series     int    `json:"series"`
	Reps       int    `json:"reps"`
}

// WorkoutInput is the create request body. The owner is never part of it.
type WorkoutInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Day         int               `json:"day"`
	Exercises   []AssignmentInput `json:"exercises"`
}

// WorkoutPatch mutates title/description/day only; assignments are managed
// through the dedicated add/remove operations.
type WorkoutPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Day         *int    `json:"day"`
}

func validateAssignment(in AssignmentInput, v validation.Violations) {
	validation.Required("exerciseId", in.ExerciseID, v)
	validation.PositiveInt("series", in.Series, v)
	validation.PositiveInt("reps", in.Reps, v)
}

// Create inserts the workout and its initial assignments as one logical
// operation. Each assignment must reference an existing exercise.
func (s *WorkoutService) Create(ownerID string, in WorkoutInput) (*models.Workout, error) {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.IntRange("day", in.Day, 1, 7, v)
	for _, a := range in.Exercises {
		validateAssignment(a, v)
	}
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	w := models.Workout{
		Title:       in.Title,
		Description: in.Description,
		Day:         in.Day,
		UserID:      ownerID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, a := range in.Exercises {
			var count int64
			if err := tx.Model(&models.Exercise{}).Where("id = ?", a.ExerciseID).Count(&count).Error; err != nil {
				return apperr.FromStore(err)
			}
			if count == 0 {
				return apperr.ErrNotFound
			}
		}
		if err := tx.Create(&w).Error; err != nil {
			return apperr.FromStore(err)
		}
		for _, a := range in.Exercises {
			row := models.ExerciseInWorkout{
				WorkoutID:  w.ID,
				ExerciseID: a.ExerciseID,
				Series:     a.Series,
				Reps:       a.Reps,
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperr.FromStore(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(w.ID, ownerID)
}

func (s *WorkoutService) preloaded() *gorm.DB {
	return s.DB.
		Preload("Exercises").
		Preload("Exercises.Exercise").
		Preload("Exercises.Exercise.GroupMuscle")
}

// ListOwn returns only the caller's workouts with assignments, exercises,
// and muscle groups joined in.
func (s *WorkoutService) ListOwn(ownerID string) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := s.preloaded().Where("user_id = ?", ownerID).Order("day asc").Find(&workouts).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return workouts, nil
}

// ListAll is the admin view across every user. No ownership guard here;
// the role gate upstream is the only check.
func (s *WorkoutService) ListAll() ([]models.Workout, error) {
	var workouts []models.Workout
	if err := s.preloaded().Order("user_id asc, day asc").Find(&workouts).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return workouts, nil
}

func (s *WorkoutService) GetByID(id, requesterID string) (*models.Workout, error) {
	if _, err := policy.WorkoutByID(s.DB, id, requesterID); err != nil {
		return nil, err
	}
	var w models.Workout
	if err := s.preloaded().First(&w, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &w, nil
}

func (s *WorkoutService) Update(id, requesterID string, patch WorkoutPatch) (*models.Workout, error) {
	w, err := policy.WorkoutByID(s.DB, id, requesterID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Day != nil {
		v := validation.Violations{}
		validation.IntRange("day", *patch.Day, 1, 7, v)
		if !v.Empty() {
			return nil, apperr.Validation(v)
		}
		updates["day"] = *patch.Day
	}
	if len(updates) > 0 {
		if err := s.DB.Model(w).Updates(updates).Error; err != nil {
			return nil, apperr.FromStore(err)
		}
	}
	return s.GetByID(id, requesterID)
}

// Delete removes the workout's assignments and then the workout, in one
// transaction. A concurrent delete of the same workout makes the lookup
// miss; that caller sees NotFound, which is the documented race outcome.
func (s *WorkoutService) Delete(id, requesterID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		w, err := policy.WorkoutByID(tx, id, requesterID)
		if err != nil {
			return err
		}
		if err := tx.Where("workout_id = ?", id).Delete(&models.ExerciseInWorkout{}).Error; err != nil {
			return apperr.FromStore(err)
		}
		if err := tx.Delete(w).Error; err != nil {
			return apperr.FromStore(err)
		}
		return nil
	})
}

// AddExercise attaches one assignment to a workout the requester owns. The
// guard runs against the parent workout since the assignment does not exist
// yet.
func (s *WorkoutService) AddExercise(workoutID, requesterID string, in AssignmentInput) (*models.ExerciseInWorkout, error) {
	v := validation.Violations{}
	validateAssignment(in, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}
	if _, err := policy.WorkoutByID(s.DB, workoutID, requesterID); err != nil {
		return nil, err
	}
	var count int64
	if err := s.DB.Model(&models.Exercise{}).Where("id = ?", in.ExerciseID).Count(&count).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	if count == 0 {
		return nil, apperr.ErrNotFound
	}
	row := models.ExerciseInWorkout{
		WorkoutID:  workoutID,
		ExerciseID: in.ExerciseID,
		Series:     in.Series,
		Reps:       in.Reps,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	if err := s.DB.Preload("Exercise").Preload("Exercise.GroupMuscle").First(&row, "id = ?", row.ID).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &row, nil
}

// RemoveExercise resolves the assignment to its parent workout, checks
// ownership there, and deletes the single row.
func (s *WorkoutService) RemoveExercise(assignmentID, requesterID string) error {
	a, _, err := policy.AssignmentByID(s.DB, assignmentID, requesterID)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(a).Error; err != nil {
		return apperr.FromStore(err)
	}
	return nil
}
