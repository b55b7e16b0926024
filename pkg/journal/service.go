package journal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"gorm.io/gorm"
)

// Service handles journal business logic. All operations are scoped to
// the owning user.
type Service struct {
	db *gorm.DB
}

// NewService creates a new journal service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create creates a journal entry
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req models.CreateJournalRequest) (*models.Journal, error) {
	entry := &models.Journal{
		UserID:    userID,
		Title:     req.Title,
		Body:      req.Body,
		Mood:      req.Mood,
		EntryDate: req.EntryDate,
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return entry, nil
}

// List lists the user's journal entries, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Journal, error) {
	var entries []models.Journal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("entry_date DESC").
		Find(&entries).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return entries, nil
}

// Get retrieves one of the user's journal entries
func (s *Service) Get(ctx context.Context, entryID, userID uuid.UUID) (*models.Journal, error) {
	var entry models.Journal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("journal entry")
		}
		return nil, domain.NewInternalError(err)
	}
	return &entry, nil
}

// Update patches a journal entry
func (s *Service) Update(ctx context.Context, entryID, userID uuid.UUID, req models.UpdateJournalRequest) (*models.Journal, error) {
	entry, err := s.Get(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if req.Mood != nil {
		updates["mood"] = *req.Mood
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
			return nil, domain.NewInternalError(err)
		}
	}

	return entry, nil
}

// Delete removes a journal entry
func (s *Service) Delete(ctx context.Context, entryID, userID uuid.UUID) error {
	entry, err := s.Get(ctx, entryID, userID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return domain.NewInternalError(err)
	}

	return nil
}
