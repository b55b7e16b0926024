package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/middleware"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/labstack/echo/v4"
)

// currentUserID extracts the authenticated user ID set by the auth
// middleware. The bool is false when the route was wired without it.
func currentUserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(middleware.ContextUserID).(uuid.UUID)
	return id, ok
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: "unauthorized",
	})
}

// formUpload opens an optional multipart file field. A missing field is
// not an error; the caller gets a nil reader.
func formUpload(c echo.Context, field string) (io.ReadCloser, string, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == echo.ErrNotFound {
			return nil, "", "", nil
		}
		// echo wraps the missing-file case in a 400 HTTPError
		if _, ok := err.(*echo.HTTPError); ok {
			return nil, "", "", nil
		}
		return nil, "", "", err
	}

	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (io.ReadCloser, string, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", "", err
	}
	return f, fh.Header.Get("Content-Type"), fh.Filename, nil
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
