package models

import (
	"time"

	"github.com/google/uuid"
)

type Trainer struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code        string    `gorm:"size:10;unique" json:"code"`
	FullName    string    `gorm:"size:255;not null" json:"full_name"`
	Email       string    `gorm:"size:255;not null;unique" json:"email"`
	Phone       *string   `gorm:"size:20" json:"phone"`
	TrainerType string    `gorm:"size:20;not null;default:'onboard'" json:"trainer_type"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
