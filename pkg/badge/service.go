package badge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/logger"
	"github.com/jordanlanch/trainhub/pkg/models"
	"gorm.io/gorm"
)

// Badge codes, awarded from accumulated activity
const (
	CodeFirstEntry = "first_entry"
	CodeScribe     = "scribe"
	CodeTeamPlayer = "team_player"
	CodeRegular    = "regular"
	CodeDataDriven = "data_driven"
)

// RunSummary is the aggregate outcome of a full recalculation run
type RunSummary struct {
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	FailedIDs []uuid.UUID `json:"failed_ids,omitempty"`
}

// Service derives per-user badge summaries from accumulated activity
type Service struct {
	db  *gorm.DB
	log logger.Logger
}

// NewService creates a new badge service
func NewService(db *gorm.DB, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// GetUserBadges returns the user's current badge summary. Users the
// nightly job has not reached yet get an empty default rather than an
// error.
func (s *Service) GetUserBadges(ctx context.Context, userID uuid.UUID) (*models.Badge, error) {
	var badge models.Badge
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&badge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Badge{
				UserID:      userID,
				Level:       models.BadgeLevelRookie,
				EarnedCodes: []string{},
			}, nil
		}
		return nil, domain.NewInternalError(err)
	}

	return &badge, nil
}

// CalculateAllUserBadges recomputes every user's badge summary from
// scratch. Recomputation is idempotent: with unchanged activity the
// persisted summaries are identical after a re-run. A failure on one
// user is recorded and does not abort the remaining users.
func (s *Service) CalculateAllUserBadges(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{}

	var users []models.User
	result := s.db.WithContext(ctx).Select("id").FindInBatches(&users, 200, func(tx *gorm.DB, batch int) error {
		for _, u := range users {
			if err := s.calculateForUser(ctx, u.ID); err != nil {
				summary.Failed++
				summary.FailedIDs = append(summary.FailedIDs, u.ID)
				s.log.Error("badge calculation failed", "user_id", u.ID, "error", err)
				continue
			}
			summary.Processed++
		}
		return nil
	})
	if result.Error != nil {
		return summary, domain.NewInternalError(fmt.Errorf("failed to iterate users: %w", result.Error))
	}

	return summary, nil
}

// calculateForUser derives one user's badge state and writes it only
// when it differs from the stored row, so unchanged activity leaves the
// row untouched.
func (s *Service) calculateForUser(ctx context.Context, userID uuid.UUID) error {
	journals, journalLatest, err := s.countAndLatest(ctx, &models.Journal{}, userID, "user_id")
	if err != nil {
		return fmt.Errorf("journals: %w", err)
	}

	trainings, trainingLatest, err := s.countAndLatest(ctx, &models.TrainingMember{}, userID, "user_id")
	if err != nil {
		return fmt.Errorf("training members: %w", err)
	}

	performances, perfLatest, err := s.countAndLatest(ctx, &models.PhysicalPerformance{}, userID, "user_id")
	if err != nil {
		return fmt.Errorf("physical performances: %w", err)
	}

	exercises, exLatest, err := s.countAndLatest(ctx, &models.UserPerformanceExercise{}, userID, "user_id")
	if err != nil {
		return fmt.Errorf("exercises: %w", err)
	}

	performanceTotal := performances + exercises
	computedAt := latestOf(journalLatest, trainingLatest, perfLatest, exLatest)

	derived := models.Badge{
		UserID:           userID,
		Level:            levelFor(journals + trainings + performanceTotal),
		JournalCount:     journals,
		TrainingCount:    trainings,
		PerformanceCount: performanceTotal,
		EarnedCodes:      codesFor(journals, trainings, performanceTotal),
		ComputedAt:       computedAt,
	}

	var existing models.Badge
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.db.WithContext(ctx).Create(&derived).Error
		}
		return err
	}

	if badgeEqual(&existing, &derived) {
		return nil
	}

	return s.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"level":             derived.Level,
		"journal_count":     derived.JournalCount,
		"training_count":    derived.TrainingCount,
		"performance_count": derived.PerformanceCount,
		"earned_codes":      derived.EarnedCodes,
		"computed_at":       derived.ComputedAt,
	}).Error
}

// countAndLatest counts a user's rows of the given model and returns
// the newest creation timestamp among them. The timestamp anchors
// ComputedAt to activity rather than wall clock, which keeps re-runs
// idempotent.
func (s *Service) countAndLatest(ctx context.Context, model interface{}, userID uuid.UUID, column string) (int, time.Time, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(model).Where(column+" = ?", userID)
	if err := q.Count(&count).Error; err != nil {
		return 0, time.Time{}, err
	}

	if count == 0 {
		return 0, time.Time{}, nil
	}

	var latest []time.Time
	if err := s.db.WithContext(ctx).Model(model).Where(column+" = ?", userID).
		Order("created_at DESC").Limit(1).
		Pluck("created_at", &latest).Error; err != nil {
		return 0, time.Time{}, err
	}
	if len(latest) == 0 {
		return int(count), time.Time{}, nil
	}

	return int(count), latest[0], nil
}

func latestOf(times ...time.Time) time.Time {
	var latest time.Time
	for _, t := range times {
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}

func levelFor(total int) string {
	switch {
	case total >= 100:
		return models.BadgeLevelGold
	case total >= 50:
		return models.BadgeLevelSilver
	case total >= 20:
		return models.BadgeLevelBronze
	default:
		return models.BadgeLevelRookie
	}
}

func codesFor(journals, trainings, performances int) []string {
	var codes []string
	if journals >= 1 {
		codes = append(codes, CodeFirstEntry)
	}
	if journals >= 10 {
		codes = append(codes, CodeScribe)
	}
	if trainings >= 1 {
		codes = append(codes, CodeTeamPlayer)
	}
	if trainings >= 10 {
		codes = append(codes, CodeRegular)
	}
	if performances >= 10 {
		codes = append(codes, CodeDataDriven)
	}
	sort.Strings(codes)
	if codes == nil {
		codes = []string{}
	}
	return codes
}

func badgeEqual(a, b *models.Badge) bool {
	if a.Level != b.Level ||
		a.JournalCount != b.JournalCount ||
		a.TrainingCount != b.TrainingCount ||
		a.PerformanceCount != b.PerformanceCount ||
		!a.ComputedAt.Equal(b.ComputedAt) {
		return false
	}
	if len(a.EarnedCodes) != len(b.EarnedCodes) {
		return false
	}
	for i := range a.EarnedCodes {
		if a.EarnedCodes[i] != b.EarnedCodes[i] {
			return false
		}
	}
	return true
}
