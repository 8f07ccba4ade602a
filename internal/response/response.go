// Package response provides standardized JSON response helpers.
package response

import (
	"net/http"

	app_errors "logstream/internal/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse defines the standard JSON error response structure.
// The detail field carries the boundary-translated message, which may
// embed the underlying error's text; no other error data reaches the
// response body.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// InternalErrorResponse is the shape of the top-level uncaught-fault
// response. It carries the reporting instance so a fleet operator can
// attribute 500s without log correlation.
type InternalErrorResponse struct {
	Error    string `json:"error"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// JSON sends a raw success payload. Ingest and query endpoints return
// their documented response shapes directly rather than a wrapped
// envelope.
func JSON(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error sends a standardized error response using an APIError.
func Error(c *gin.Context, apiErr *app_errors.APIError) {
	c.JSON(apiErr.HTTPStatus, ErrorResponse{
		Code:   apiErr.Code,
		Detail: apiErr.Message,
	})
}

// InternalError sends the top-level 500 for faults no handler caught.
// Typed errors (validation 422s included) never pass through here.
func InternalError(c *gin.Context, instance string) {
	c.JSON(http.StatusInternalServerError, InternalErrorResponse{
		Error:    app_errors.ErrInternalServer.Code,
		Detail:   app_errors.ErrInternalServer.Message,
		Instance: instance,
	})
}
