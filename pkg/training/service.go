package training

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"gorm.io/gorm"
)

// Service handles training calendar and membership business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new training service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create creates a training calendar entry owned by the caller
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req models.CreateTrainingRequest) (*models.TrainingCalendar, error) {
	training := &models.TrainingCalendar{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	}

	if err := s.db.WithContext(ctx).Create(training).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return training, nil
}

// List returns upcoming training sessions, newest start first
func (s *Service) List(ctx context.Context) ([]models.TrainingCalendar, error) {
	var trainings []models.TrainingCalendar
	if err := s.db.WithContext(ctx).Order("starts_at DESC").Find(&trainings).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return trainings, nil
}

// Get retrieves a single training session
func (s *Service) Get(ctx context.Context, trainingID uuid.UUID) (*models.TrainingCalendar, error) {
	var training models.TrainingCalendar
	if err := s.db.WithContext(ctx).First(&training, "id = ?", trainingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("training")
		}
		return nil, domain.NewInternalError(err)
	}
	return &training, nil
}

// Update patches a training session. Only the owner may update it.
func (s *Service) Update(ctx context.Context, trainingID, callerID uuid.UUID, req models.UpdateTrainingRequest) (*models.TrainingCalendar, error) {
	training, err := s.Get(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	if training.OwnerID != callerID {
		return nil, domain.NewForbiddenError("only the owner can update this training")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(training).Updates(updates).Error; err != nil {
			return nil, domain.NewInternalError(err)
		}
	}

	return training, nil
}

// Delete removes a training session and its memberships. Owner only.
func (s *Service) Delete(ctx context.Context, trainingID, callerID uuid.UUID) error {
	training, err := s.Get(ctx, trainingID)
	if err != nil {
		return err
	}
	if training.OwnerID != callerID {
		return domain.NewForbiddenError("only the owner can delete this training")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("training_id = ?", trainingID).Delete(&models.TrainingMember{}).Error; err != nil {
			return domain.NewInternalError(err)
		}
		if err := tx.Delete(training).Error; err != nil {
			return domain.NewInternalError(err)
		}
		return nil
	})
}

// Join adds the caller to a training session. A user joins a given
// session at most once; the compound unique index backs up the
// pre-write check.
func (s *Service) Join(ctx context.Context, trainingID, userID uuid.UUID) (*models.TrainingMember, error) {
	training, err := s.Get(ctx, trainingID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.TrainingMember{}).
		Where("training_id = ? AND user_id = ?", trainingID, userID).
		Count(&count).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if count > 0 {
		return nil, domain.NewConflictError("already a member of this training")
	}

	if training.Capacity > 0 {
		var members int64
		if err := s.db.WithContext(ctx).Model(&models.TrainingMember{}).
			Where("training_id = ?", trainingID).
			Count(&members).Error; err != nil {
			return nil, domain.NewInternalError(err)
		}
		if members >= int64(training.Capacity) {
			return nil, domain.NewConflictError("training is at capacity")
		}
	}

	member := &models.TrainingMember{
		UserID:     userID,
		TrainingID: trainingID,
	}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("already a member of this training")
		}
		return nil, domain.NewInternalError(err)
	}

	return member, nil
}

// Leave removes the caller from a training session
func (s *Service) Leave(ctx context.Context, trainingID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("training_id = ? AND user_id = ?", trainingID, userID).
		Delete(&models.TrainingMember{})
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("membership")
	}

	return nil
}

// Members lists the members of a training session
func (s *Service) Members(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingMember, error) {
	if _, err := s.Get(ctx, trainingID); err != nil {
		return nil, err
	}

	var members []models.TrainingMember
	if err := s.db.WithContext(ctx).
		Where("training_id = ?", trainingID).
		Order("created_at").
		Find(&members).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return members, nil
}
