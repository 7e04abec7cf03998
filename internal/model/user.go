package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role separates recipe authors from recipe consumers.
type Role string

const (
	RoleChef     Role = "chef"
	RoleConsumer Role = "consumer"
)

func (r Role) Valid() bool {
	return r == RoleChef || r == RoleConsumer
}

type User struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
