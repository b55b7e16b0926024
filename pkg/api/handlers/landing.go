package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/landing"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/labstack/echo/v4"
)

// LandingHandler handles public landing page endpoints
type LandingHandler struct {
	landing   *landing.Service
	validator *validator.Validate
	errs      *errors.Mapper
}

// NewLandingHandler creates a new landing handler
func NewLandingHandler(landingSvc *landing.Service, errs *errors.Mapper) *LandingHandler {
	return &LandingHandler{
		landing:   landingSvc,
		validator: validator.New(),
		errs:      errs,
	}
}

// SubmitCareerForm accepts a multipart career application with an
// optional resume file.
func (h *LandingHandler) SubmitCareerForm(c echo.Context) error {
	var req models.CareerFormRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	resume, resumeType, resumeName, err := formUpload(c, "resume")
	if err != nil {
		return h.errs.Validation(c, err)
	}
	if resume != nil {
		defer resume.Close()
	}

	form, err := h.landing.SubmitCareerForm(c.Request().Context(), req, resume, resumeType, resumeName)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, form)
}

// ListCareerForms lists submissions for admin review
func (h *LandingHandler) ListCareerForms(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	forms, err := h.landing.ListCareerForms(c.Request().Context(), limit, offset)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, forms)
}
