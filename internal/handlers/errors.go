package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/tasktrack/internal/constants"
	apierrors "github.com/yukikurage/tasktrack/internal/errors"
	"github.com/yukikurage/tasktrack/internal/services"
	"github.com/yukikurage/tasktrack/internal/utils"
)

// respondError maps service errors onto API errors.
func respondError(c *gin.Context, err error) {
	var fieldErrors utils.FieldErrors
	switch {
	case errors.As(err, &fieldErrors):
		apierrors.ValidationFailed(c, fieldErrors)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrTooManyAttempts):
		apierrors.TooManyRequests(c, "")
	case errors.Is(err, services.ErrInvalidResetLink):
		apierrors.InvalidLink(c)
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.BadRequest(c, err.Error())
	default:
		logrus.WithError(err).
			WithField("request_id", c.GetString(constants.ContextKeyRequestID)).
			Error("Unhandled service error")
		apierrors.InternalError(c, "")
	}
}
