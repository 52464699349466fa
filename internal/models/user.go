package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles are two flat values; there is no hierarchy between them.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the persisted account record. Email is stored lowercase and unique.
type User struct {
	ID       string `gorm:"primaryKey;type:text" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"unique;not null;index" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role     string `gorm:"not null;default:'USER'" json:"role"`
	// CurrentTokenID holds the jti of the latest issued token when the
	// single-session policy is enabled; empty otherwise.
	CurrentTokenID string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
