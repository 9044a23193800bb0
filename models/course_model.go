package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Course struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code          string          `gorm:"size:10;unique" json:"code"`
	Name          string          `gorm:"size:255;not null;unique" json:"name"`
	DurationWeeks int             `gorm:"not null" json:"duration_weeks"`
	TotalFee      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_fee"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
