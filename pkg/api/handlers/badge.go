package handlers

import (
	"net/http"

	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/badge"
	"github.com/labstack/echo/v4"
)

// BadgeHandler handles badge endpoints
type BadgeHandler struct {
	badges *badge.Service
	errs   *errors.Mapper
}

// NewBadgeHandler creates a new badge handler
func NewBadgeHandler(badges *badge.Service, errs *errors.Mapper) *BadgeHandler {
	return &BadgeHandler{badges: badges, errs: errs}
}

// GetMine returns the caller's badge summary
func (h *BadgeHandler) GetMine(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	b, err := h.badges.GetUserBadges(c.Request().Context(), userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, b)
}

// GetUser returns another user's badge summary
func (h *BadgeHandler) GetUser(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	b, err := h.badges.GetUserBadges(c.Request().Context(), id)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, b)
}

// Recalculate triggers a full badge recalculation run. Admin only; the
// nightly job covers the normal case.
func (h *BadgeHandler) Recalculate(c echo.Context) error {
	summary, err := h.badges.CalculateAllUserBadges(c.Request().Context())
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}
