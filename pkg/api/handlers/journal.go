package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/journal"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/labstack/echo/v4"
)

// JournalHandler handles training diary endpoints
type JournalHandler struct {
	journals  *journal.Service
	validator *validator.Validate
	errs      *errors.Mapper
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journals *journal.Service, errs *errors.Mapper) *JournalHandler {
	return &JournalHandler{
		journals:  journals,
		validator: validator.New(),
		errs:      errs,
	}
}

// Create creates a journal entry
func (h *JournalHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreateJournalRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	entry, err := h.journals.Create(c.Request().Context(), userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// List lists the caller's journal entries
func (h *JournalHandler) List(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	entries, err := h.journals.List(c.Request().Context(), userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, entries)
}

// Get retrieves one of the caller's journal entries
func (h *JournalHandler) Get(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	entry, err := h.journals.Get(c.Request().Context(), id, userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, entry)
}

// Update patches a journal entry
func (h *JournalHandler) Update(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	var req models.UpdateJournalRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	entry, err := h.journals.Update(c.Request().Context(), id, userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, entry)
}

// Delete removes a journal entry
func (h *JournalHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.journals.Delete(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
