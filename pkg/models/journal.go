package models

import (
	"time"

	"github.com/google/uuid"
)

// Journal is a user's training diary entry
type Journal struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `json:"body"`
	Mood      string    `gorm:"size:20" json:"mood,omitempty"`
	EntryDate time.Time `gorm:"index;not null" json:"entry_date"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// CreateJournalRequest creates a journal entry
type CreateJournalRequest struct {
	Title     string    `json:"title" validate:"required,min=1"`
	Body      string    `json:"body"`
	Mood      string    `json:"mood" validate:"omitempty,oneof=great good neutral tired sore"`
	EntryDate time.Time `json:"entry_date" validate:"required"`
}

// UpdateJournalRequest patches a journal entry
type UpdateJournalRequest struct {
	Title *string `json:"title" validate:"omitempty,min=1"`
	Body  *string `json:"body"`
	Mood  *string `json:"mood" validate:"omitempty,oneof=great good neutral tired sore"`
}
