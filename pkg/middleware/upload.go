package middleware

import (
	"net/http"

	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/labstack/echo/v4"
)

// allowedUploadTypes is the fixed allow-list for file-bearing routes.
// Anything else is rejected before any service logic runs.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"video/mp4":       true,
	"video/quicktime": true,
}

// AllowedUploadType reports whether a MIME type may be uploaded
func AllowedUploadType(contentType string) bool {
	return allowedUploadTypes[contentType]
}

// ValidateUpload checks the declared MIME type of the named multipart
// file field, when present. Routes that require the file enforce its
// presence in the handler; this middleware only guards the type.
func ValidateUpload(field string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			fh, err := c.FormFile(field)
			if err != nil {
				// No file attached; nothing to validate
				return next(c)
			}

			contentType := fh.Header.Get("Content-Type")
			if !AllowedUploadType(contentType) {
				return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
					Error: "unsupported file type",
				})
			}

			return next(c)
		}
	}
}
