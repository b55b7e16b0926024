package errors

import (
	"log"
	"net/http"

	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/labstack/echo/v4"
)

// Mapper translates service errors into HTTP responses. In legacy mode
// every service error is returned as 422 with an {"error": "..."}
// body, matching clients written against the original API. With legacy
// mode off, domain error codes map to conventional statuses.
type Mapper struct {
	legacy bool
}

// NewMapper creates an error mapper. legacy selects the flat-422
// response convention.
func NewMapper(legacy bool) *Mapper {
	return &Mapper{legacy: legacy}
}

// Respond writes the HTTP response for a service error
func (m *Mapper) Respond(c echo.Context, err error) error {
	code := domain.GetErrorCode(err)
	msg := domain.UserMessage(err)

	if code == domain.ErrCodeInternal || code == domain.ErrCodeExternalService {
		log.Printf("[ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	}

	if m.legacy {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: msg})
	}

	return c.JSON(statusFor(code), models.ErrorResponse{Error: msg})
}

func statusFor(code string) int {
	switch code {
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeConflict:
		return http.StatusConflict
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Validation rejects a request that failed binding or input validation
func (m *Mapper) Validation(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return m.Respond(c, domain.NewValidationError("Invalid request data. Please check your input and try again."))
}

// UnauthorizedError rejects an unauthenticated request
func UnauthorizedError(c echo.Context, reason string) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: "You are not authorized to access this resource.",
	})
}

// ForbiddenError rejects a request lacking permission
func ForbiddenError(c echo.Context, reason string) error {
	return c.JSON(http.StatusForbidden, models.ErrorResponse{
		Error: "You do not have permission to access this resource.",
	})
}
