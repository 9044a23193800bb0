package models

import (
	"time"

	"github.com/google/uuid"
)

type Batch struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name"`
	CourseID  uuid.UUID `gorm:"not null" json:"course_id"`
	TrainerID uuid.UUID `gorm:"not null" json:"trainer_id"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	Timing    string    `gorm:"size:50" json:"timing"`

	Course  Course  `gorm:"foreignkey:CourseID" json:"course"`
	Trainer Trainer `gorm:"foreignkey:TrainerID" json:"trainer"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
