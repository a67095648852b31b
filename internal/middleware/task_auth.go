package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/tasktrack/internal/constants"
	apierrors "github.com/yukikurage/tasktrack/internal/errors"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/services"
)

// RequireTaskAccess loads the task named by the param into the context.
// Missing tasks, malformed ids and tasks the user may not see all answer 404.
func RequireTaskAccess(taskService *services.TaskService, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		user, _ := GetCurrentUser(c)
		task, err := taskService.GetTask(c.Request.Context(), user, taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				logrus.WithError(err).WithField("task_id", taskID).Error("Failed to load task")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask returns the task loaded by RequireTaskAccess.
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
