package models

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code         string     `gorm:"size:10;unique" json:"code"`
	FullName     string     `gorm:"size:255;not null" json:"full_name"`
	Email        string     `gorm:"size:255;not null;unique" json:"email"`
	Phone        string     `gorm:"size:20;not null" json:"phone"`
	CourseID     uuid.UUID  `gorm:"not null" json:"course_id"`
	BatchID      *uuid.UUID `json:"batch_id"`
	ConsultantID *uuid.UUID `json:"consultant_id"`
	CourseStatus string     `gorm:"size:20;not null;default:'ongoing'" json:"course_status"`

	Course     Course      `gorm:"foreignkey:CourseID" json:"course"`
	Batch      *Batch      `gorm:"foreignkey:BatchID" json:"batch,omitempty"`
	Consultant *Consultant `gorm:"foreignkey:ConsultantID" json:"consultant,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
