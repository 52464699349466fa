package services

import (
	"gorm.io/gorm"

	"github.com/gymplanner/gymplanner/internal/apperr"
	"github.com/gymplanner/gymplanner/internal/models"
	"github.com/gymplanner/gymplanner/internal/validation"
)

// CatalogService manages the admin-owned reference data: muscle groups and
// exercises. Deletions cascade manually toward dependents because the store
// enforces no cascade of its own.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{DB: db} }

// GroupMusclePatch and ExercisePatch apply only fields present as keys in
// the request body, regardless of value.
type GroupMusclePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ExercisePatch struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	GroupMuscleID *string `json:"groupMuscleId"`
}

func (s *CatalogService) CreateGroupMuscle(name, description string) (*models.GroupMuscle, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}
	g := models.GroupMuscle{Name: name, Description: description}
	if err := s.DB.Create(&g).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &g, nil
}

func (s *CatalogService) ListGroupMuscles() ([]models.GroupMuscle, error) {
	var groups []models.GroupMuscle
	if err := s.DB.Order("name asc").Find(&groups).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return groups, nil
}

func (s *CatalogService) GetGroupMuscle(id string) (*models.GroupMuscle, error) {
	var g models.GroupMuscle
	if err := s.DB.First(&g, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &g, nil
}

func (s *CatalogService) UpdateGroupMuscle(id string, patch GroupMusclePatch) (*models.GroupMuscle, error) {
	g, err := s.GetGroupMuscle(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if len(updates) == 0 {
		return g, nil
	}
	if err := s.DB.Model(g).Updates(updates).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return s.GetGroupMuscle(id)
}

// DeleteGroupMuscle runs the four-step cascade in one transaction:
// enumerate dependent exercises, delete the assignments referencing them,
// delete the exercises, delete the group. Skipping any step would leave
// dangling rows visible to later catalog listings.
func (s *CatalogService) DeleteGroupMuscle(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var g models.GroupMuscle
		if err := tx.First(&g, "id = ?", id).Error; err != nil {
			return apperr.FromStore(err)
		}
		var exerciseIDs []string
		if err := tx.Model(&models.Exercise{}).Where("group_muscle_id = ?", id).Pluck("id", &exerciseIDs).Error; err != nil {
			return apperr.FromStore(err)
		}
		if len(exerciseIDs) > 0 {
			if err := tx.Where("exercise_id IN ?", exerciseIDs).Delete(&models.ExerciseInWorkout{}).Error; err != nil {
				return apperr.FromStore(err)
			}
			if err := tx.Where("group_muscle_id = ?", id).Delete(&models.Exercise{}).Error; err != nil {
				return apperr.FromStore(err)
			}
		}
		if err := tx.Delete(&g).Error; err != nil {
			return apperr.FromStore(err)
		}
		return nil
	})
}

func (s *CatalogService) CreateExercise(name, description, groupMuscleID string) (*models.Exercise, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.Required("groupMuscleId", groupMuscleID, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}
	if _, err := s.GetGroupMuscle(groupMuscleID); err != nil {
		return nil, err
	}
	e := models.Exercise{Name: name, Description: description, GroupMuscleID: groupMuscleID}
	if err := s.DB.Create(&e).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &e, nil
}

func (s *CatalogService) ListExercises() ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := s.DB.Preload("GroupMuscle").Order("name asc").Find(&exercises).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return exercises, nil
}

func (s *CatalogService) GetExercise(id string) (*models.Exercise, error) {
	var e models.Exercise
	if err := s.DB.Preload("GroupMuscle").First(&e, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &e, nil
}

func (s *CatalogService) UpdateExercise(id string, patch ExercisePatch) (*models.Exercise, error) {
	e, err := s.GetExercise(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.GroupMuscleID != nil {
		if _, err := s.GetGroupMuscle(*patch.GroupMuscleID); err != nil {
			return nil, err
		}
		updates["group_muscle_id"] = *patch.GroupMuscleID
	}
	if len(updates) == 0 {
		return e, nil
	}
	if err := s.DB.Model(e).Updates(updates).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return s.GetExercise(id)
}

// DeleteExercise deletes the assignments referencing the exercise, then the
// exercise itself, in one transaction.
func (s *CatalogService) DeleteExercise(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var e models.Exercise
		if err := tx.First(&e, "id = ?", id).Error; err != nil {
			return apperr.FromStore(err)
		}
		if err := tx.Where("exercise_id = ?", id).Delete(&models.ExerciseInWorkout{}).Error; err != nil {
			return apperr.FromStore(err)
		}
		if err := tx.Delete(&e).Error; err != nil {
			return apperr.FromStore(err)
		}
		return nil
	})
}
