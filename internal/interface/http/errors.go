package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/linkbio/internal/application"
	"github.com/oksasatya/linkbio/pkg/response"
)

// statusOf maps application errors to HTTP status codes and messages.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrEmailTaken):
		return http.StatusBadRequest, "email already registered"
	case errors.Is(err, app.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, app.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, app.ErrProfileNotFound):
		return http.StatusNotFound, "profile not found"
	case errors.Is(err, app.ErrProfileLimit):
		return http.StatusBadRequest, "profile limit reached"
	case errors.Is(err, app.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeServiceError renders err with the status of its taxonomy class.
// Internal errors are logged and their message is passed through.
func writeServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
	}
	response.Error(c, status, msg, err)
}
