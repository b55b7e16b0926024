package models

import (
	"time"

	"github.com/google/uuid"
)

// TrainingCalendar is a scheduled training session users can join
type TrainingCalendar struct {
	Base
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	StartsAt    time.Time `gorm:"index;not null" json:"starts_at"`
	EndsAt      time.Time `gorm:"not null" json:"ends_at"`
	Capacity    int       `gorm:"default:0" json:"capacity"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

// TrainingMember is the join row between a user and a training session.
// Unique per (user, training) pair.
type TrainingMember struct {
	Base
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_training_member_pair" json:"user_id"`
	TrainingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_training_member_pair" json:"training_id"`

	User     *User             `gorm:"foreignKey:UserID" json:"-"`
	Training *TrainingCalendar `gorm:"foreignKey:TrainingID" json:"-"`
}

// CreateTrainingRequest creates a training calendar entry
type CreateTrainingRequest struct {
	Title       string    `json:"title" validate:"required,min=2"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
}

// UpdateTrainingRequest patches a training calendar entry
type UpdateTrainingRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=2"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gte=0"`
}
