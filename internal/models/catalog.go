package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Catalog models: reference data managed by admins and shared by all users.

// GroupMuscle owns zero or more Exercises. Deleting one cascades through
// its Exercises down to workout assignments (orchestrated in services, the
// store itself declares no ON DELETE CASCADE).
type GroupMuscle struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (g *GroupMuscle) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Exercise always belongs to a GroupMuscle.
type Exercise struct {
	ID            string `gorm:"primaryKey;type:text" json:"id"`
	Name          string `gorm:"not null" json:"name"`
	Description   string `json:"description"`
	GroupMuscleID string `gorm:"not null;index" json:"groupMuscleId"`
	// Pointer so an unloaded association is omitted from JSON instead of
	// serializing as a zero-valued object.
	GroupMuscle *GroupMuscle `gorm:"foreignKey:GroupMuscleID" json:"groupMuscle,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (e *Exercise) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
