package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/services"
	"gorm.io/gorm"
)

// LoadUser resolves the session user, if any, into the request context.
// Sessions pointing at missing or inactive users are cleared.
func LoadUser(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := toUint64(session.Get(constants.ContextKeyUserID))
		if !ok {
			c.Next()
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("Failed to load session user")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if err != nil || !services.CanAuthenticate(user) {
			session.Clear()
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCurrentUser(c); !ok {
			target := constants.RouteLogin + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperuser redirects users who may not manage tasks to the home page.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := GetCurrentUser(c)
		if !services.CanManageTasks(user) {
			c.Redirect(http.StatusFound, constants.RouteHome)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCurrentUser returns the user loaded by LoadUser.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

// Session values round-trip through different encoders, so accept any integer kind.
func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
