package models

import (
	"time"

	"github.com/google/uuid"
)

// Badge is the per-user computed achievement summary. It is regenerated
// wholesale by the nightly aggregation job rather than maintained
// incrementally, so a re-run with unchanged activity produces an
// identical row.
type Badge struct {
	Base
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Level            string    `gorm:"size:20;not null" json:"level"`
	JournalCount     int       `json:"journal_count"`
	TrainingCount    int       `json:"training_count"`
	PerformanceCount int       `json:"performance_count"`
	EarnedCodes      []string  `gorm:"serializer:json" json:"earned_codes"`
	ComputedAt       time.Time `json:"computed_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// Badge levels, derived from total recorded activity
const (
	BadgeLevelRookie = "rookie"
	BadgeLevelBronze = "bronze"
	BadgeLevelSilver = "silver"
	BadgeLevelGold   = "gold"
)
