package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/dto"
	apierrors "github.com/yukikurage/tasktrack/internal/errors"
	"github.com/yukikurage/tasktrack/internal/middleware"
	"github.com/yukikurage/tasktrack/internal/services"
	"github.com/yukikurage/tasktrack/internal/utils"
)

// TaskHandler handles task and dashboard HTTP handlers.
type TaskHandler struct {
	taskService      *services.TaskService
	dashboardService *services.DashboardService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, dashboardService *services.DashboardService) *TaskHandler {
	return &TaskHandler{
		taskService:      taskService,
		dashboardService: dashboardService,
	}
}

// Home shows the tasks assigned to the current user.
func (h *TaskHandler) Home(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	data, err := h.dashboardService.Home(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHomeDTO(*data, user))
}

// Dashboard shows the global counts.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	data, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardDTO(*data))
}

// ListTasks shows every task, newest first, one page at a time.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	page := utils.GetPaginationParams(c)

	data, err := h.dashboardService.TaskBoard(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskBoardDTO(*data, page, user))
}

// CreateTask creates a pending task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	var req services.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, user))
}

// GetTask returns the task loaded by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	task, _ := middleware.GetTask(c)

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, user))
}

// TaskForm returns the update form view model.
func (h *TaskHandler) TaskForm(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	task, _ := middleware.GetTask(c)

	form, err := h.taskService.TaskForm(c.Request.Context(), user, task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskFormDTO(*form, user))
}

// UpdateTask saves the update form.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	task, _ := middleware.GetTask(c)

	var req services.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), user, task.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, user))
}

// DeleteTask deletes a task and returns to the task list.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, _ := middleware.GetTask(c)

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, constants.RouteTaskList)
}

// CalendarPage returns the choices of the calendar create form.
func (h *TaskHandler) CalendarPage(c *gin.Context) {
	data, err := h.taskService.CalendarPage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCalendarPageDTO(*data))
}

// CalendarEvents is the JSON feed of tasks with a due date.
func (h *TaskHandler) CalendarEvents(c *gin.Context) {
	tasks, err := h.taskService.CalendarEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCalendarEventDTOs(tasks))
}

// DeleteCalendarTask deletes a task from the calendar. Only DELETE is accepted.
func (h *TaskHandler) DeleteCalendarTask(c *gin.Context) {
	if c.Request.Method != http.MethodDelete {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	taskID, err := strconv.ParseUint(c.Param("task_id"), 10, 64)
	if err != nil {
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// DraftTasks suggests tasks from free text using OpenAI. Nothing is saved.
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	type DraftTasksRequest struct {
		Text string `json:"text" binding:"required,min=1,max=10000"`
	}

	var req DraftTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToGeneratedTaskDTOs(drafts),
	})
}
