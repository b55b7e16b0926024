package performance

import (
	"context"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"gorm.io/gorm"
)

// Service handles attendance goals, physical performance records and
// exercise logs. All operations are scoped to the owning user.
type Service struct {
	db *gorm.DB
}

// NewService creates a new performance service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateAttendanceGoal creates a weekly attendance goal
func (s *Service) CreateAttendanceGoal(ctx context.Context, userID uuid.UUID, req models.CreateAttendanceGoalRequest) (*models.AttendanceGoal, error) {
	goal := &models.AttendanceGoal{
		UserID:          userID,
		SessionsPerWeek: req.SessionsPerWeek,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}

	if err := s.db.WithContext(ctx).Create(goal).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return goal, nil
}

// ListAttendanceGoals lists the user's attendance goals
func (s *Service) ListAttendanceGoals(ctx context.Context, userID uuid.UUID) ([]models.AttendanceGoal, error) {
	var goals []models.AttendanceGoal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("starts_at DESC").
		Find(&goals).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return goals, nil
}

// DeleteAttendanceGoal removes one of the user's attendance goals
func (s *Service) DeleteAttendanceGoal(ctx context.Context, goalID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.AttendanceGoal{})
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("attendance goal")
	}
	return nil
}

// RecordPhysicalPerformance records a physical metric measurement
func (s *Service) RecordPhysicalPerformance(ctx context.Context, userID uuid.UUID, req models.CreatePhysicalPerformanceRequest) (*models.PhysicalPerformance, error) {
	record := &models.PhysicalPerformance{
		UserID:     userID,
		Metric:     req.Metric,
		Value:      req.Value,
		Unit:       req.Unit,
		RecordedAt: req.RecordedAt,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return record, nil
}

// ListPhysicalPerformances lists the user's metric history, optionally
// narrowed to one metric.
func (s *Service) ListPhysicalPerformances(ctx context.Context, userID uuid.UUID, metric string) ([]models.PhysicalPerformance, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC")
	if metric != "" {
		query = query.Where("metric = ?", metric)
	}

	var records []models.PhysicalPerformance
	if err := query.Find(&records).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return records, nil
}

// DeletePhysicalPerformance removes one of the user's metric records
func (s *Service) DeletePhysicalPerformance(ctx context.Context, recordID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recordID, userID).
		Delete(&models.PhysicalPerformance{})
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("performance record")
	}
	return nil
}

// LogExercise logs an exercise entry
func (s *Service) LogExercise(ctx context.Context, userID uuid.UUID, req models.CreateExerciseRequest) (*models.UserPerformanceExercise, error) {
	entry := &models.UserPerformanceExercise{
		UserID:   userID,
		Exercise: req.Exercise,
		Sets:     req.Sets,
		Reps:     req.Reps,
		WeightKg: req.WeightKg,
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return entry, nil
}

// ListExercises lists the user's exercise log, newest first
func (s *Service) ListExercises(ctx context.Context, userID uuid.UUID) ([]models.UserPerformanceExercise, error) {
	var entries []models.UserPerformanceExercise
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return entries, nil
}

// DeleteExercise removes one of the user's exercise entries
func (s *Service) DeleteExercise(ctx context.Context, entryID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.UserPerformanceExercise{})
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("exercise entry")
	}
	return nil
}
