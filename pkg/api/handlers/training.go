package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/training"
	"github.com/labstack/echo/v4"
)

// TrainingHandler handles training calendar endpoints
type TrainingHandler struct {
	trainings *training.Service
	validator *validator.Validate
	errs      *errors.Mapper
}

// NewTrainingHandler creates a new training handler
func NewTrainingHandler(trainings *training.Service, errs *errors.Mapper) *TrainingHandler {
	return &TrainingHandler{
		trainings: trainings,
		validator: validator.New(),
		errs:      errs,
	}
}

// Create creates a training session owned by the caller
func (h *TrainingHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreateTrainingRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	t, err := h.trainings.Create(c.Request().Context(), userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, t)
}

// List lists training sessions
func (h *TrainingHandler) List(c echo.Context) error {
	trainings, err := h.trainings.List(c.Request().Context())
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, trainings)
}

// Get retrieves a training session
func (h *TrainingHandler) Get(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	t, err := h.trainings.Get(c.Request().Context(), id)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, t)
}

// Update patches a training session
func (h *TrainingHandler) Update(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	var req models.UpdateTrainingRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	t, err := h.trainings.Update(c.Request().Context(), id, userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, t)
}

// Delete removes a training session
func (h *TrainingHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.trainings.Delete(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Join adds the caller to a training session
func (h *TrainingHandler) Join(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	member, err := h.trainings.Join(c.Request().Context(), id, userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, member)
}

// Leave removes the caller from a training session
func (h *TrainingHandler) Leave(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.trainings.Leave(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Members lists the members of a training session
func (h *TrainingHandler) Members(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	members, err := h.trainings.Members(c.Request().Context(), id)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, members)
}
