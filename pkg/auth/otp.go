package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/jordanlanch/trainhub/pkg/cache"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = 15 * time.Minute
)

// OTPStore issues and verifies single-use numeric codes for the
// forgot-password flow. Codes live in Redis with a TTL and are consumed
// on successful verification; a verified code is exchanged for a reset
// token that authorizes exactly one password reset.
type OTPStore struct {
	cache *cache.Client
}

// NewOTPStore creates a new OTP store
func NewOTPStore(cache *cache.Client) *OTPStore {
	return &OTPStore{cache: cache}
}

// Issue generates a 6-digit code for the given email and stores it with a TTL.
// Issuing again overwrites any previous unconsumed code.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.cache.Set(ctx, otpKey(email), code, otpTTL); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	return code, nil
}

// Verify checks a submitted code. On success the code is consumed and a
// reset token is returned; verifying the same code twice fails.
func (s *OTPStore) Verify(ctx context.Context, email, code string) (string, error) {
	stored, err := s.cache.Get(ctx, otpKey(email))
	if err != nil {
		if cache.IsNil(err) {
			return "", fmt.Errorf("code expired or not issued")
		}
		return "", fmt.Errorf("failed to read code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return "", fmt.Errorf("invalid code")
	}

	if err := s.cache.Delete(ctx, otpKey(email)); err != nil {
		return "", fmt.Errorf("failed to consume code: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, resetKey(email), token, resetTokenTTL); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// ConsumeResetToken validates and consumes a reset token issued by Verify
func (s *OTPStore) ConsumeResetToken(ctx context.Context, email, token string) error {
	stored, err := s.cache.Get(ctx, resetKey(email))
	if err != nil {
		if cache.IsNil(err) {
			return fmt.Errorf("reset token expired or not issued")
		}
		return fmt.Errorf("failed to read reset token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return fmt.Errorf("invalid reset token")
	}

	return s.cache.Delete(ctx, resetKey(email))
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:code:%s", email)
}

func resetKey(email string) string {
	return fmt.Sprintf("otp:reset:%s", email)
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
