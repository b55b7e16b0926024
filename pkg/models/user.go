package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform member
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Name             string     `gorm:"not null" json:"name"`
	Phone            string     `gorm:"index" json:"phone,omitempty"`
	Role             string     `gorm:"size:20;default:user" json:"role"`
	PhoneVerified    bool       `gorm:"default:false" json:"phone_verified"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	StripeCustomerID *string    `gorm:"index" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserInfo represents user information in responses
type UserInfo struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	PhoneVerified bool      `json:"phone_verified"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
}

// NewUserInfo maps a User document to its response shape.
func NewUserInfo(u *User) *UserInfo {
	return &UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Phone:         u.Phone,
		Role:          u.Role,
		PhoneVerified: u.PhoneVerified,
		AvatarURL:     u.AvatarURL,
	}
}
