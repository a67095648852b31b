package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/tasktrack/internal/middleware"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/services"
)

// Routes bundles what RegisterRoutes needs.
type Routes struct {
	Auth        *AuthHandler
	Tasks       *TaskHandler
	TaskService *services.TaskService
	UserRepo    repository.UserRepository
}

// RegisterRoutes mounts every route. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, routes Routes) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task tracker is running",
		})
	})

	app := r.Group("/")
	app.Use(middleware.LoadUser(routes.UserRepo))

	// Account routes (public)
	app.POST("/login/", routes.Auth.Login)
	app.POST("/register/", routes.Auth.Register)
	app.POST("/forgot-password/", routes.Auth.ForgotPassword)
	app.POST("/password-reset-confirm/:uidb64/:token/", routes.Auth.ResetPasswordConfirm)

	// Account routes (protected)
	account := app.Group("")
	account.Use(middleware.RequireLogin())
	{
		account.GET("/logout/", routes.Auth.Logout)
		account.POST("/logout/", routes.Auth.Logout)
		account.POST("/password-change/", routes.Auth.ChangePassword)
		account.GET("/profile/", routes.Auth.Profile)
		account.POST("/profile/", routes.Auth.UpdateProfile)
	}

	// Task routes open to every logged-in user
	tasks := app.Group("")
	tasks.Use(middleware.RequireLogin())
	{
		taskAccess := middleware.RequireTaskAccess(routes.TaskService, "pk")

		tasks.GET("/", routes.Tasks.Home)
		tasks.GET("/task-details/:pk/", taskAccess, routes.Tasks.GetTask)
		tasks.GET("/task-update/:pk/", taskAccess, routes.Tasks.TaskForm)
		tasks.POST("/task-update/:pk/", taskAccess, routes.Tasks.UpdateTask)
	}

	// Task management routes (superuser)
	manage := app.Group("")
	manage.Use(middleware.RequireLogin(), middleware.RequireSuperuser())
	{
		taskAccess := middleware.RequireTaskAccess(routes.TaskService, "pk")

		manage.GET("/dashboard", routes.Tasks.Dashboard)
		manage.GET("/tasks-list/", routes.Tasks.ListTasks)
		manage.POST("/create-task/", routes.Tasks.CreateTask)
		manage.GET("/delete-task/:pk", taskAccess, routes.Tasks.DeleteTask)
		manage.POST("/delete-task/:pk", taskAccess, routes.Tasks.DeleteTask)
		manage.GET("/calendar/", routes.Tasks.CalendarPage)
		manage.POST("/calendar/", routes.Tasks.CreateTask)
		manage.GET("/api/tasks/", routes.Tasks.CalendarEvents)
		manage.POST("/api/tasks/draft", routes.Tasks.DraftTasks)
		manage.Any("/delete-calendar-task/:task_id/", routes.Tasks.DeleteCalendarTask)
	}
}
