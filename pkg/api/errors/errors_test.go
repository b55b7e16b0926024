package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, m *Mapper, err error) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, m.Respond(c, err))
	return rec
}

func TestLegacyMapperFlattensTo422(t *testing.T) {
	m := NewMapper(true)

	cases := []error{
		domain.NewNotFoundError("journal entry"),
		domain.NewConflictError("already a member"),
		domain.NewValidationError("bad input"),
		domain.NewUnauthorizedError("invalid credentials"),
		domain.NewForbiddenError("admins only"),
		domain.NewInternalError(errors.New("boom")),
		domain.NewExternalServiceError("billing", errors.New("down")),
	}

	for _, err := range cases {
		rec := respond(t, m, err)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "error: %v", err)
	}
}

func TestLegacyMapperBody(t *testing.T) {
	m := NewMapper(true)

	rec := respond(t, m, domain.NewNotFoundError("journal entry"))
	assert.JSONEq(t, `{"error": "journal entry not found"}`, rec.Body.String())
}

func TestTypedMapperStatuses(t *testing.T) {
	m := NewMapper(false)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.NewNotFoundError("plan"), http.StatusNotFound},
		{"conflict", domain.NewConflictError("duplicate"), http.StatusConflict},
		{"validation", domain.NewValidationError("bad input"), http.StatusBadRequest},
		{"unauthorized", domain.NewUnauthorizedError(""), http.StatusUnauthorized},
		{"forbidden", domain.NewForbiddenError("admins only"), http.StatusForbidden},
		{"external service", domain.NewExternalServiceError("billing", errors.New("down")), http.StatusBadGateway},
		{"internal", domain.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"untyped", errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := respond(t, m, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestInternalDetailsAreNotExposed(t *testing.T) {
	for _, legacy := range []bool{true, false} {
		m := NewMapper(legacy)

		rec := respond(t, m, domain.NewInternalError(errors.New("pq: connection refused")))
		assert.NotContains(t, rec.Body.String(), "connection refused")
		assert.Contains(t, rec.Body.String(), "An internal error occurred")
	}
}

func TestValidation(t *testing.T) {
	m := NewMapper(false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, m.Validation(c, errors.New("field required")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request data")
}

func TestValidationLegacy(t *testing.T) {
	m := NewMapper(true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, m.Validation(c, errors.New("field required")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
