package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/performance"
	"github.com/labstack/echo/v4"
)

// PerformanceHandler handles attendance goal, physical performance and
// exercise log endpoints.
type PerformanceHandler struct {
	performances *performance.Service
	validator    *validator.Validate
	errs         *errors.Mapper
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(performances *performance.Service, errs *errors.Mapper) *PerformanceHandler {
	return &PerformanceHandler{
		performances: performances,
		validator:    validator.New(),
		errs:         errs,
	}
}

// CreateAttendanceGoal creates an attendance goal
func (h *PerformanceHandler) CreateAttendanceGoal(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreateAttendanceGoalRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	goal, err := h.performances.CreateAttendanceGoal(c.Request().Context(), userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, goal)
}

// ListAttendanceGoals lists the caller's attendance goals
func (h *PerformanceHandler) ListAttendanceGoals(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	goals, err := h.performances.ListAttendanceGoals(c.Request().Context(), userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, goals)
}

// DeleteAttendanceGoal removes an attendance goal
func (h *PerformanceHandler) DeleteAttendanceGoal(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.performances.DeleteAttendanceGoal(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// RecordPhysicalPerformance records a physical metric
func (h *PerformanceHandler) RecordPhysicalPerformance(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreatePhysicalPerformanceRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	record, err := h.performances.RecordPhysicalPerformance(c.Request().Context(), userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, record)
}

// ListPhysicalPerformances lists the caller's metric history. The
// metric query parameter narrows to one metric.
func (h *PerformanceHandler) ListPhysicalPerformances(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	records, err := h.performances.ListPhysicalPerformances(c.Request().Context(), userID, c.QueryParam("metric"))
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, records)
}

// DeletePhysicalPerformance removes a metric record
func (h *PerformanceHandler) DeletePhysicalPerformance(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.performances.DeletePhysicalPerformance(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// LogExercise logs an exercise entry
func (h *PerformanceHandler) LogExercise(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreateExerciseRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	entry, err := h.performances.LogExercise(c.Request().Context(), userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// ListExercises lists the caller's exercise log
func (h *PerformanceHandler) ListExercises(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	entries, err := h.performances.ListExercises(c.Request().Context(), userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, entries)
}

// DeleteExercise removes an exercise entry
func (h *PerformanceHandler) DeleteExercise(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.performances.DeleteExercise(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
