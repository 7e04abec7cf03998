package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/internal/apperr"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated), errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrUserExists), errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperr.ErrQueryFailed), errors.Is(err, apperr.ErrWriteFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrorHandler writes the last error attached to the context as a JSON
// body, unless the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		status := StatusFor(last.Err)
		msg := last.Err.Error()
		entry := logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": status,
		}).WithError(last.Err)
		if status >= http.StatusInternalServerError {
			entry.Error("Request failed")
			if status == http.StatusInternalServerError {
				msg = "internal server error"
			}
		} else {
			entry.Debug("Request rejected")
		}
		c.JSON(status, ErrorResponse{Error: msg})
	}
}

// Abort stops the chain and leaves err for ErrorHandler.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
