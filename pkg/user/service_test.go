package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/auth"
	"github.com/jordanlanch/trainhub/pkg/cache"
	"github.com/jordanlanch/trainhub/pkg/database"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/email"
	"github.com/jordanlanch/trainhub/pkg/logger"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

var otpPattern = regexp.MustCompile(`\d{6}`)

type captureSMSProvider struct {
	sendErr  error
	lastTo   string
	lastBody string
}

func (p *captureSMSProvider) SendSMS(ctx context.Context, to, from, body string) (*sms.SMSResult, error) {
	p.lastTo = to
	p.lastBody = body
	if p.sendErr != nil {
		return nil, p.sendErr
	}
	return &sms.SMSResult{SID: "SM1", Status: "sent", DateCreated: time.Now()}, nil
}

type mockUploader struct {
	uploadErr error
	lastKey   string
}

func (m *mockUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	m.lastKey = key
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return "https://cdn.example.com/" + key, nil
}

type testEnv struct {
	service  *Service
	db       *gorm.DB
	provider *captureSMSProvider
	uploader *mockUploader
}

func setupTestService(t *testing.T) *testEnv {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	provider := &captureSMSProvider{}
	uploader := &mockUploader{}

	service := NewService(
		db,
		auth.NewOTPStore(redisClient),
		auth.NewTokenBlacklist(redisClient),
		sms.NewService(provider, "+15550000000"),
		email.NewService("", "team@trainhub.app", "TrainHub", "http://localhost:3000"),
		uploader,
		logger.New("error"),
		testJWTSecret,
		24,
	)

	return &testEnv{service: service, db: db, provider: provider, uploader: uploader}
}

func signUpRequest() models.SignUpRequest {
	return models.SignUpRequest{
		Email:    "runner@example.com",
		Password: "supersecret",
		Name:     "Runner",
		Phone:    "+12024561111",
	}
}

func TestSignUp(t *testing.T) {
	env := setupTestService(t)

	resp, err := env.service.SignUp(context.Background(), signUpRequest(), nil, "", "")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "runner@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)

	// Password is stored hashed, never verbatim
	var stored models.User
	require.NoError(t, env.db.First(&stored, "email = ?", "runner@example.com").Error)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "supersecret"))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	env := setupTestService(t)

	_, err := env.service.SignUp(context.Background(), signUpRequest(), nil, "", "")
	require.NoError(t, err)

	_, err = env.service.SignUp(context.Background(), signUpRequest(), nil, "", "")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestSignUpWithAvatar(t *testing.T) {
	env := setupTestService(t)

	resp, err := env.service.SignUp(context.Background(), signUpRequest(), strings.NewReader("img"), "image/png", "me.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(env.uploader.lastKey, "avatars/"))
	assert.True(t, strings.HasSuffix(env.uploader.lastKey, ".png"))
	assert.Contains(t, resp.User.AvatarURL, env.uploader.lastKey)
}

func TestSignUpAvatarUploadFailure(t *testing.T) {
	env := setupTestService(t)
	env.uploader.uploadErr = errors.New("bucket unavailable")

	_, err := env.service.SignUp(context.Background(), signUpRequest(), strings.NewReader("img"), "image/png", "me.png")
	require.Error(t, err)
	assert.True(t, domain.IsExternalService(err))

	// No user row is left behind when the upload fails
	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "runner@example.com").Count(&count).Error)
	assert.Zero(t, count)
}

func TestLogin(t *testing.T) {
	env := setupTestService(t)

	_, err := env.service.SignUp(context.Background(), signUpRequest(), nil, "", "")
	require.NoError(t, err)

	resp, err := env.service.Login(context.Background(), models.LoginRequest{
		Email:    "runner@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	claims, err := auth.ValidateJWT(resp.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "runner@example.com", claims.Email)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "email = ?", "runner@example.com").Error)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupTestService(t)

	_, err := env.service.SignUp(context.Background(), signUpRequest(), nil, "", "")
	require.NoError(t, err)

	_, err = env.service.Login(context.Background(), models.LoginRequest{
		Email:    "runner@example.com",
		Password: "wrongpass",
	})
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	env := setupTestService(t)

	// Unknown email and wrong password are indistinguishable to the caller
	_, err := env.service.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestPasswordResetFlow(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	_, err := env.service.SignUp(ctx, signUpRequest(), nil, "", "")
	require.NoError(t, err)

	require.NoError(t, env.service.ForgotPassword(ctx, "runner@example.com"))
	assert.Equal(t, "+12024561111", env.provider.lastTo)

	code := otpPattern.FindString(env.provider.lastBody)
	require.NotEmpty(t, code, "SMS body should carry the code")

	resetToken, err := env.service.VerifyOTP(ctx, models.OTPVerificationRequest{
		Email: "runner@example.com",
		Code:  code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resetToken)

	// Verification also marks the phone as confirmed
	var stored models.User
	require.NoError(t, env.db.First(&stored, "email = ?", "runner@example.com").Error)
	assert.True(t, stored.PhoneVerified)

	require.NoError(t, env.service.ResetPassword(ctx, models.ResetPasswordRequest{
		Email:       "runner@example.com",
		ResetToken:  resetToken,
		NewPassword: "freshsecret",
	}))

	_, err = env.service.Login(ctx, models.LoginRequest{Email: "runner@example.com", Password: "supersecret"})
	require.Error(t, err)

	_, err = env.service.Login(ctx, models.LoginRequest{Email: "runner@example.com", Password: "freshsecret"})
	require.NoError(t, err)
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	env := setupTestService(t)

	// Unknown emails succeed without sending anything, so callers can't
	// probe which addresses are registered
	require.NoError(t, env.service.ForgotPassword(context.Background(), "ghost@example.com"))
	assert.Empty(t, env.provider.lastTo)
}

func TestForgotPasswordNoPhone(t *testing.T) {
	env := setupTestService(t)

	req := signUpRequest()
	req.Phone = ""
	_, err := env.service.SignUp(context.Background(), req, nil, "", "")
	require.NoError(t, err)

	err = env.service.ForgotPassword(context.Background(), req.Email)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestVerifyOTPWrongCode(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	_, err := env.service.SignUp(ctx, signUpRequest(), nil, "", "")
	require.NoError(t, err)
	require.NoError(t, env.service.ForgotPassword(ctx, "runner@example.com"))

	_, err = env.service.VerifyOTP(ctx, models.OTPVerificationRequest{
		Email: "runner@example.com",
		Code:  "000000",
	})
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestResetTokenSingleUse(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	_, err := env.service.SignUp(ctx, signUpRequest(), nil, "", "")
	require.NoError(t, err)
	require.NoError(t, env.service.ForgotPassword(ctx, "runner@example.com"))

	code := otpPattern.FindString(env.provider.lastBody)
	resetToken, err := env.service.VerifyOTP(ctx, models.OTPVerificationRequest{
		Email: "runner@example.com",
		Code:  code,
	})
	require.NoError(t, err)

	req := models.ResetPasswordRequest{
		Email:       "runner@example.com",
		ResetToken:  resetToken,
		NewPassword: "freshsecret",
	}
	require.NoError(t, env.service.ResetPassword(ctx, req))

	// A consumed token cannot reset the password again
	err = env.service.ResetPassword(ctx, req)
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	resp, err := env.service.SignUp(ctx, signUpRequest(), nil, "", "")
	require.NoError(t, err)

	require.NoError(t, env.service.Logout(ctx, resp.Token))

	err = env.service.Logout(ctx, "not.a.token")
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestUpdateProfilePhoneResetsVerification(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	resp, err := env.service.SignUp(ctx, signUpRequest(), nil, "", "")
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("phone_verified", true).Error)

	newPhone := "+12024562222"
	_, err = env.service.UpdateProfile(ctx, resp.User.ID, models.UpdateProfileRequest{Phone: &newPhone}, nil, "", "")
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", resp.User.ID).Error)
	assert.Equal(t, newPhone, stored.Phone)
	assert.False(t, stored.PhoneVerified, "changing the phone requires re-verification")
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	env := setupTestService(t)

	name := "Nobody"
	_, err := env.service.UpdateProfile(context.Background(), uuid.New(), models.UpdateProfileRequest{Name: &name}, nil, "", "")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestSignUpInsertFailureIsInternal(t *testing.T) {
	env := setupTestService(t)

	// Break inserts into users to simulate a transient database failure
	// that is not a unique violation
	require.NoError(t, env.db.Exec(
		`CREATE TRIGGER block_user_insert BEFORE INSERT ON users
		 BEGIN SELECT RAISE(ABORT, 'disk I/O error'); END`).Error)

	_, err := env.service.SignUp(context.Background(), signUpRequest(), nil, "", "")
	require.Error(t, err)
	assert.False(t, domain.IsConflict(err))
	assert.Equal(t, domain.ErrCodeInternal, domain.GetErrorCode(err))
}
