// Package services holds the domain operations behind the HTTP handlers,
// including every manual cascade-deletion algorithm. The store declares no
// automatic cascades; each multi-step deletion runs inside one transaction
// so concurrent readers never observe a half-deleted graph.
package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gymplanner/gymplanner/internal/apperr"
	"github.com/gymplanner/gymplanner/internal/models"
	"github.com/gymplanner/gymplanner/internal/validation"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService { return &UserService{DB: db} }

// UserPatch is a partial update: only non-nil fields are applied, so a
// present-but-empty value is applied as-is (key presence decides, not
// truthiness). Role is only ever set by the admin handler.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// Register creates an account with the USER role. Email is normalized to
// lowercase before the uniqueness check.
func (s *UserService) Register(name, email, password string) (*models.User, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.Required("email", email, v)
	validation.Required("password", password, v)
	if email != "" {
		validation.Email("email", email, v)
	}
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	if count > 0 {
		return nil, apperr.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.DB.Create(&u).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &u, nil
}

// Authenticate verifies credentials. A wrong email and a wrong password
// produce the same failure; the caller never learns which field was wrong.
// Only a missing row counts as bad credentials: any other store error stays
// a store failure.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u models.User
	if err := s.DB.First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUnauthenticated
		}
		return nil, apperr.FromStore(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, apperr.ErrUnauthenticated
	}
	return &u, nil
}

func (s *UserService) GetByID(id string) (*models.User, error) {
	var u models.User
	if err := s.DB.First(&u, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return &u, nil
}

func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at asc").Find(&users).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return users, nil
}

// Update applies a partial patch. An email change goes through the same
// normalization and uniqueness check as registration; a password change is
// re-hashed.
func (s *UserService) Update(id string, patch UserPatch) (*models.User, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		v := validation.Violations{}
		validation.Required("email", email, v)
		validation.Email("email", email, v)
		if !v.Empty() {
			return nil, apperr.Validation(v)
		}
		if email != u.Email {
			var count int64
			if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
				return nil, apperr.FromStore(err)
			}
			if count > 0 {
				return nil, apperr.ErrConflict
			}
		}
		updates["email"] = email
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hash)
	}
	if patch.Role != nil {
		if *patch.Role != models.RoleUser && *patch.Role != models.RoleAdmin {
			return nil, apperr.Validation(validation.Violations{"role": "unknown_role"})
		}
		updates["role"] = *patch.Role
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.DB.Model(u).Updates(updates).Error; err != nil {
		return nil, apperr.FromStore(err)
	}
	return s.GetByID(id)
}

// Delete removes a user and everything they own: assignments of all their
// workouts, then the workouts, then the user. One transaction.
func (s *UserService) Delete(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return apperr.FromStore(err)
		}
		var workoutIDs []string
		if err := tx.Model(&models.Workout{}).Where("user_id = ?", id).Pluck("id", &workoutIDs).Error; err != nil {
			return apperr.FromStore(err)
		}
		if len(workoutIDs) > 0 {
			if err := tx.Where("workout_id IN ?", workoutIDs).Delete(&models.ExerciseInWorkout{}).Error; err != nil {
				return apperr.FromStore(err)
			}
			if err := tx.Where("user_id = ?", id).Delete(&models.Workout{}).Error; err != nil {
				return apperr.FromStore(err)
			}
		}
		if err := tx.Delete(&u).Error; err != nil {
			return apperr.FromStore(err)
		}
		return nil
	})
}

// StoreTokenID records the jti of the latest issued token in the user's
// single-session slot.
func (s *UserService) StoreTokenID(userID, jti string) error {
	err := s.DB.Model(&models.User{}).Where("id = ?", userID).Update("current_token_id", jti).Error
	return apperr.FromStore(err)
}

// ClearTokenID empties the slot on logout so the outstanding token can no
// longer be replayed.
func (s *UserService) ClearTokenID(userID string) error {
	err := s.DB.Model(&models.User{}).Where("id = ?", userID).Update("current_token_id", "").Error
	return apperr.FromStore(err)
}

// VerifySession backs the gate's session verifier: the user must still
// exist and, when singleSession is on, the presented jti must match the
// stored slot. A deleted user or a stale jti is ErrUnauthenticated; a
// failing store is ErrStore, never mistaken for a revoked session.
func (s *UserService) VerifySession(userID, jti string, singleSession bool) error {
	var u models.User
	if err := s.DB.Select("id", "current_token_id").First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUnauthenticated
		}
		return apperr.FromStore(err)
	}
	if singleSession && u.CurrentTokenID != jti {
		return apperr.ErrUnauthenticated
	}
	return nil
}
