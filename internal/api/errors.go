package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap/internal/apperr"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

const (
	msgUnauthenticated = "Full authentication is required to access this resource."
	msgForbidden       = "You do not have permission to access this resource."
	msgValidation      = "Validation Failed"
	msgProvisioning    = "Could not set up your account. Please retry the request."
	msgInternal        = "An unexpected error occurred. Please try again later."
)

// ErrorHandler renders the last error recorded on the context once the
// handler chain has finished without writing a response.
func ErrorHandler() gin.HandlerFunc {
	logger := log.WithPrefix("api")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		status, msg := classify(last)
		if status == http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", last.Err)
		}

		c.JSON(status, ErrorResponse{
			Timestamp: time.Now().UTC(),
			Status:    status,
			Error:     http.StatusText(status),
			Message:   msg,
			Path:      c.Request.URL.Path,
		})
	}
}

func classify(e *gin.Error) (int, string) {
	if e.IsType(gin.ErrorTypeBind) {
		return http.StatusBadRequest, msgValidation
	}

	err := e.Err
	msg := apperr.Message(err)
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, orDefault(msg, msgUnauthenticated)
	case errors.Is(err, apperr.ErrForbidden):
		// never explain a denial
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, orDefault(msg, "Resource not found.")
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest, orDefault(msg, msgValidation)
	case errors.Is(err, apperr.ErrProvisioningConflict):
		return http.StatusConflict, msgProvisioning
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, orDefault(msg, "Conflict.")
	}
	return http.StatusInternalServerError, msgInternal
}

func orDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
