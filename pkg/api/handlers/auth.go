package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/middleware"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/user"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and the password reset flow
type AuthHandler struct {
	users     *user.Service
	validator *validator.Validate
	errs      *errors.Mapper
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, errs *errors.Mapper) *AuthHandler {
	return &AuthHandler{
		users:     users,
		validator: validator.New(),
		errs:      errs,
	}
}

// SignUp registers a new user. Accepts multipart form data with an
// optional avatar file.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req models.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	avatar, avatarType, avatarName, err := formUpload(c, "avatar")
	if err != nil {
		return h.errs.Validation(c, err)
	}
	if avatar != nil {
		defer avatar.Close()
	}

	resp, err := h.users.SignUp(c.Request().Context(), req, avatar, avatarType, avatarName)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, resp)
}

// Login authenticates a user by email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	resp, err := h.users.Login(c.Request().Context(), req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// ForgotPassword sends a one-time code to the user's phone
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.users.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "If the email is registered, a verification code has been sent",
	})
}

// VerifyOTP exchanges a valid code for a password reset token
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req models.OTPVerificationRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	token, err := h.users.VerifyOTP(c.Request().Context(), req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"reset_token": token})
}

// ResetPassword sets a new password given a valid reset token
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.users.ResetPassword(c.Request().Context(), req); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Password updated",
	})
}

// Logout revokes the presented token
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get(middleware.ContextToken).(string)
	if !ok {
		return unauthorized(c)
	}

	if err := h.users.Logout(c.Request().Context(), token); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := h.users.Get(c.Request().Context(), userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.NewUserInfo(u))
}

// UpdateProfile patches the caller's profile. Accepts multipart form
// data with an optional avatar file.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	avatar, avatarType, avatarName, err := formUpload(c, "avatar")
	if err != nil {
		return h.errs.Validation(c, err)
	}
	if avatar != nil {
		defer avatar.Close()
	}

	u, err := h.users.UpdateProfile(c.Request().Context(), userID, req, avatar, avatarType, avatarName)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.NewUserInfo(u))
}
