package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceGoal is a user's weekly training attendance target
type AttendanceGoal struct {
	Base
	UserID          uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	SessionsPerWeek int       `gorm:"not null" json:"sessions_per_week"`
	StartsAt        time.Time `gorm:"not null" json:"starts_at"`
	EndsAt          time.Time `gorm:"not null" json:"ends_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// PhysicalPerformance is a single recorded physical metric
type PhysicalPerformance struct {
	Base
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Metric     string    `gorm:"not null" json:"metric"`
	Value      float64   `gorm:"not null" json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `gorm:"index;not null" json:"recorded_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// UserPerformanceExercise is a logged exercise with sets/reps/weight
type UserPerformanceExercise struct {
	Base
	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Exercise string    `gorm:"not null" json:"exercise"`
	Sets     int       `gorm:"not null" json:"sets"`
	Reps     int       `gorm:"not null" json:"reps"`
	WeightKg float64   `json:"weight_kg,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// CreateAttendanceGoalRequest creates an attendance goal
type CreateAttendanceGoalRequest struct {
	SessionsPerWeek int       `json:"sessions_per_week" validate:"required,gte=1,lte=14"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	EndsAt          time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

// CreatePhysicalPerformanceRequest records a physical metric
type CreatePhysicalPerformanceRequest struct {
	Metric     string    `json:"metric" validate:"required"`
	Value      float64   `json:"value" validate:"required"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recorded_at" validate:"required"`
}

// CreateExerciseRequest logs an exercise entry
type CreateExerciseRequest struct {
	Exercise string  `json:"exercise" validate:"required"`
	Sets     int     `json:"sets" validate:"required,gte=1"`
	Reps     int     `json:"reps" validate:"required,gte=1"`
	WeightKg float64 `json:"weight_kg" validate:"gte=0"`
}
