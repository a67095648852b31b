package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/utils"
	"gorm.io/gorm"
)

const (
	InvalidChoiceMessage = "Select a valid choice. That choice is not one of the available choices."
	dateLayout           = "2006-01-02"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrPendingStatusMissing   = errors.New("pending status is not seeded")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo   repository.TaskRepository
	lookupRepo repository.LookupRepository
	userRepo   repository.UserRepository
	aiService  *AIService
	now        func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, lookupRepo repository.LookupRepository, userRepo repository.UserRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		lookupRepo: lookupRepo,
		userRepo:   userRepo,
		aiService:  aiService,
		now:        time.Now,
	}
}

// CreateTaskInput is the create-task form, shared by the calendar page.
type CreateTaskInput struct {
	Title        string `json:"title" validate:"required,max=250"`
	DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Description  string `json:"description"`
	PriorityID   uint64 `json:"priority" validate:"required"`
	AssignedToID uint64 `json:"assigned_to" validate:"required"`
}

// UpdateTaskInput is the task update form.
type UpdateTaskInput struct {
	Title        string `json:"title" validate:"required,max=250"`
	DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Description  string `json:"description"`
	PriorityID   uint64 `json:"priority" validate:"required"`
	StatusID     uint64 `json:"status" validate:"required"`
	AssignedToID uint64 `json:"assigned_to"`
}

// TaskFormData is everything the update form needs.
type TaskFormData struct {
	Task               *models.Task
	AssignedToEditable bool
	Priorities         []models.Priority
	Statuses           []models.Status
	Assignees          []models.User
}

// CalendarPageData lists the choices of the calendar create form.
type CalendarPageData struct {
	Priorities []models.Priority
	Assignees  []models.User
}

var taskPreloads = []string{"Priority", "Status", "AssignedTo", "CreatedBy", "UpdatedBy"}

// CreateTask creates a pending task owned by actor. The due date may not be in the past.
func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)

	fieldErrors := utils.ValidateStruct(input)
	if fieldErrors == nil {
		fieldErrors = utils.FieldErrors{}
	}

	dueDate := s.parseDueDate(fieldErrors, input.DueDate)
	if dueDate != nil && models.DateBefore(*dueDate, s.now()) {
		fieldErrors.Add("due_date", models.DueDateBeforeCreationMessage)
	}
	if err := s.checkChoices(ctx, fieldErrors, input.PriorityID, 0, input.AssignedToID); err != nil {
		return nil, err
	}
	if fieldErrors.HasErrors() {
		return nil, fieldErrors
	}

	status, err := s.lookupRepo.FindStatusByName(ctx, models.StatusPending)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingStatusMissing
		}
		return nil, fmt.Errorf("failed to find pending status: %w", err)
	}

	task := &models.Task{
		Title:        input.Title,
		DueDate:      dueDate,
		Description:  models.StringPtr(input.Description),
		PriorityID:   input.PriorityID,
		StatusID:     status.ID,
		AssignedToID: input.AssignedToID,
		CreatedByID:  actor.ID,
		UpdatedByID:  actor.ID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, saveError("create", err)
	}

	return s.taskRepo.FindByID(ctx, task.ID, taskPreloads...)
}

// GetTask returns a task visible to viewer. Tasks the viewer may not see are reported as missing.
func (s *TaskService) GetTask(ctx context.Context, viewer *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !CanAccessTask(viewer, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// TaskForm loads the update form for viewer.
func (s *TaskService) TaskForm(ctx context.Context, viewer *models.User, taskID uint64) (*TaskFormData, error) {
	task, err := s.GetTask(ctx, viewer, taskID)
	if err != nil {
		return nil, err
	}

	priorities, err := s.lookupRepo.ListPriorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	statuses, err := s.lookupRepo.ListStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	assignees, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &TaskFormData{
		Task:               task,
		AssignedToEditable: TaskFormEditable(viewer),
		Priorities:         priorities,
		Statuses:           statuses,
		Assignees:          assignees,
	}, nil
}

// UpdateTask applies the form to the task and records actor as the last updater.
// Only editors allowed to reassign may change the assignee; for everyone else the
// submitted value is replaced by the current one.
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	if !TaskFormEditable(actor) {
		input.AssignedToID = task.AssignedToID
	}
	input.Title = strings.TrimSpace(input.Title)

	fieldErrors := utils.ValidateStruct(input)
	if fieldErrors == nil {
		fieldErrors = utils.FieldErrors{}
	}
	if input.AssignedToID == 0 {
		fieldErrors.Add("assigned_to", "This field is required.")
	}
	dueDate := s.parseDueDate(fieldErrors, input.DueDate)
	if err := s.checkChoices(ctx, fieldErrors, input.PriorityID, input.StatusID, input.AssignedToID); err != nil {
		return nil, err
	}
	if fieldErrors.HasErrors() {
		return nil, fieldErrors
	}

	task.Title = input.Title
	task.DueDate = dueDate
	task.Description = models.StringPtr(input.Description)
	task.PriorityID = input.PriorityID
	task.StatusID = input.StatusID
	task.AssignedToID = input.AssignedToID
	task.UpdatedByID = actor.ID
	task.UpdatedAt = s.now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, saveError("update", err)
	}

	return s.taskRepo.FindByID(ctx, task.ID, taskPreloads...)
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) error {
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// CalendarEvents returns every task with a due date, with priority and status loaded.
func (s *TaskService) CalendarEvents(ctx context.Context) ([]models.Task, error) {
	tasks, _, err := s.taskRepo.List(ctx, repository.TaskFilter{
		WithDueDate: true,
		Preload:     []string{"Priority", "Status"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CalendarPage lists the choices offered by the calendar create form.
func (s *TaskService) CalendarPage(ctx context.Context) (*CalendarPageData, error) {
	priorities, err := s.lookupRepo.ListPriorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	assignees, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &CalendarPageData{Priorities: priorities, Assignees: assignees}, nil
}

// DraftTasks asks the AI service for task suggestions from free text. Nothing is saved.
func (s *TaskService) DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}
	return drafts, nil
}

func (s *TaskService) parseDueDate(fieldErrors utils.FieldErrors, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	due, err := time.Parse(dateLayout, raw)
	if err != nil {
		if _, reported := fieldErrors["due_date"]; !reported {
			fieldErrors.Add("due_date", "Enter a valid date.")
		}
		return nil
	}
	return &due
}

// checkChoices verifies the selected rows exist. A zero statusID is not checked.
func (s *TaskService) checkChoices(ctx context.Context, fieldErrors utils.FieldErrors, priorityID, statusID, assignedToID uint64) error {
	if priorityID != 0 {
		if _, err := s.lookupRepo.FindPriorityByID(ctx, priorityID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to find priority: %w", err)
			}
			fieldErrors.Add("priority", InvalidChoiceMessage)
		}
	}
	if statusID != 0 {
		if _, err := s.lookupRepo.FindStatusByID(ctx, statusID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to find status: %w", err)
			}
			fieldErrors.Add("status", InvalidChoiceMessage)
		}
	}
	if assignedToID != 0 {
		assignee, err := s.userRepo.FindByID(ctx, assignedToID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find user: %w", err)
		}
		if err != nil || !assignee.IsActive {
			fieldErrors.Add("assigned_to", InvalidChoiceMessage)
		}
	}
	return nil
}

// saveError turns a save hook rejection into field errors.
func saveError(action string, err error) error {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return utils.FieldErrors{validationErr.Field: {validationErr.Message}}
	}
	return fmt.Errorf("failed to %s task: %w", action, err)
}
