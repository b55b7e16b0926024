package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/auth"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/email"
	"github.com/jordanlanch/trainhub/pkg/logger"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/sms"
	"github.com/jordanlanch/trainhub/pkg/storage"
	"gorm.io/gorm"
)

// Service handles registration, login, the OTP password reset flow and
// profile management.
type Service struct {
	db        *gorm.DB
	otp       *auth.OTPStore
	blacklist *auth.TokenBlacklist
	sms       *sms.Service
	email     *email.Service
	uploader  storage.Uploader
	log       logger.Logger

	jwtSecret      string
	jwtExpiryHours int
}

// NewService creates a new user service
func NewService(db *gorm.DB, otp *auth.OTPStore, blacklist *auth.TokenBlacklist, smsSvc *sms.Service, emailSvc *email.Service, uploader storage.Uploader, log logger.Logger, jwtSecret string, jwtExpiryHours int) *Service {
	return &Service{
		db:             db,
		otp:            otp,
		blacklist:      blacklist,
		sms:            smsSvc,
		email:          emailSvc,
		uploader:       uploader,
		log:            log,
		jwtSecret:      jwtSecret,
		jwtExpiryHours: jwtExpiryHours,
	}
}

// SignUp registers a new user. The optional avatar is uploaded before
// the row is written so a storage failure never leaves a dangling
// reference. The welcome email is best effort.
func (s *Service) SignUp(ctx context.Context, req models.SignUpRequest, avatar io.Reader, avatarType, avatarName string) (*models.AuthResponse, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if count > 0 {
		return nil, domain.NewConflictError("email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         models.RoleUser,
	}

	if avatar != nil {
		key := fmt.Sprintf("avatars/%s%s", uuid.NewString(), path.Ext(avatarName))
		url, err := s.uploader.Upload(ctx, key, avatarType, avatar)
		if err != nil {
			return nil, domain.NewExternalServiceError("storage", err)
		}
		user.AvatarURL = url
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("email already registered")
		}
		return nil, domain.NewInternalError(err)
	}

	if err := s.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
		s.log.Warn("welcome email failed", "user_id", user.ID, "error", err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtExpiryHours)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	return &models.AuthResponse{Token: token, User: models.NewUserInfo(user)}, nil
}

// Login authenticates by email and password
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.byEmail(ctx, req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, domain.NewUnauthorizedError("invalid credentials")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		s.log.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtExpiryHours)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	return &models.AuthResponse{Token: token, User: models.NewUserInfo(user)}, nil
}

// ForgotPassword issues an OTP and delivers it to the user's phone. To
// avoid leaking which emails exist, an unknown email succeeds silently.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.byEmail(ctx, emailAddr)
	if err != nil {
		if domain.IsNotFound(err) {
			s.log.Info("password reset requested for unknown email", "email", emailAddr)
			return nil
		}
		return err
	}

	if user.Phone == "" {
		return domain.NewValidationError("no phone number on file")
	}

	code, err := s.otp.Issue(ctx, user.Email)
	if err != nil {
		return domain.NewInternalError(err)
	}

	return s.sms.SendOTP(ctx, user.Phone, code)
}

// VerifyOTP exchanges a valid one-time code for a reset token
func (s *Service) VerifyOTP(ctx context.Context, req models.OTPVerificationRequest) (string, error) {
	token, err := s.otp.Verify(ctx, req.Email, req.Code)
	if err != nil {
		return "", domain.NewUnauthorizedError("invalid or expired code")
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", req.Email).
		Update("phone_verified", true).Error; err != nil {
		s.log.Warn("failed to mark phone verified", "email", req.Email, "error", err)
	}

	return token, nil
}

// ResetPassword sets a new password given a valid reset token
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.otp.ConsumeResetToken(ctx, req.Email, req.ResetToken); err != nil {
		return domain.NewUnauthorizedError("invalid or expired reset token")
	}

	user, err := s.byEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return domain.NewInternalError(err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return domain.NewInternalError(err)
	}

	if err := s.email.SendPasswordChangedEmail(user.Email, user.Name); err != nil {
		s.log.Warn("password changed email failed", "user_id", user.ID, "error", err)
	}

	return nil
}

// Logout revokes the presented token for its remaining lifetime
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := auth.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return domain.NewUnauthorizedError("invalid token")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.Add(ctx, token, ttl); err != nil {
		return domain.NewInternalError(err)
	}

	return nil
}

// Get retrieves a user by ID
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, domain.NewInternalError(err)
	}
	return &user, nil
}

// UpdateProfile patches the caller's profile, optionally replacing the
// avatar with a freshly uploaded one.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest, avatar io.Reader, avatarType, avatarName string) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
		updates["phone_verified"] = false
	}

	if avatar != nil {
		key := fmt.Sprintf("avatars/%s%s", uuid.NewString(), path.Ext(avatarName))
		url, err := s.uploader.Upload(ctx, key, avatarType, avatar)
		if err != nil {
			return nil, domain.NewExternalServiceError("storage", err)
		}
		updates["avatar_url"] = url
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, domain.NewInternalError(err)
		}
	}

	return user, nil
}

func (s *Service) byEmail(ctx context.Context, emailAddr string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", emailAddr).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, domain.NewInternalError(err)
	}
	return &user, nil
}
