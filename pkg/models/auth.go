package models

// SignUpRequest represents a registration request
type SignUpRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	Name     string `json:"name" form:"name" validate:"required,min=2"`
	Phone    string `json:"phone" form:"phone" validate:"omitempty,min=7"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest asks for an OTP to be sent to the user's phone
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPVerificationRequest verifies a one-time code
type OTPVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest sets a new password after OTP verification
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UpdateProfileRequest updates mutable profile fields
type UpdateProfileRequest struct {
	Name  *string `json:"name" form:"name" validate:"omitempty,min=2"`
	Phone *string `json:"phone" form:"phone" validate:"omitempty,min=7"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
