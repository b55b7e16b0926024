package landing

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/email"
	"github.com/jordanlanch/trainhub/pkg/logger"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/storage"
	"gorm.io/gorm"
)

// Service handles public landing page submissions
type Service struct {
	db       *gorm.DB
	email    *email.Service
	uploader storage.Uploader
	log      logger.Logger
}

// NewService creates a new landing service
func NewService(db *gorm.DB, emailSvc *email.Service, uploader storage.Uploader, log logger.Logger) *Service {
	return &Service{db: db, email: emailSvc, uploader: uploader, log: log}
}

// SubmitCareerForm stores a career application, uploading the optional
// resume first so a storage failure never leaves a dangling reference.
// Notification delivery is best effort; a mail failure never fails the
// submission.
func (s *Service) SubmitCareerForm(ctx context.Context, req models.CareerFormRequest, resume io.Reader, resumeType, resumeName string) (*models.CareerForm, error) {
	form := &models.CareerForm{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	if resume != nil {
		key := fmt.Sprintf("resumes/%s%s", uuid.NewString(), path.Ext(resumeName))
		url, err := s.uploader.Upload(ctx, key, resumeType, resume)
		if err != nil {
			return nil, domain.NewExternalServiceError("storage", err)
		}
		form.ResumeURL = url
	}

	if err := s.db.WithContext(ctx).Create(form).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	if err := s.email.SendCareerFormNotification(form); err != nil {
		s.log.Warn("career form notification failed", "form_id", form.ID, "error", err)
	}

	return form, nil
}

// ListCareerForms lists submissions for admin review, newest first
func (s *Service) ListCareerForms(ctx context.Context, limit, offset int) ([]models.CareerForm, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var forms []models.CareerForm
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&forms).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return forms, nil
}
