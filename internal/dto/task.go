package dto

import (
	"time"

	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/services"
	"github.com/yukikurage/tasktrack/internal/utils"
)

const dateLayout = "2006-01-02"

// LookupDTO represents a priority or status
type LookupDTO struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	Colour string `json:"colour"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	DueDate           *string    `json:"due_date"`
	Priority          *LookupDTO `json:"priority,omitempty"`
	Status            *LookupDTO `json:"status,omitempty"`
	AssignedToID      uint64     `json:"assigned_to_id"`
	AssignedTo        *UserDTO   `json:"assigned_to,omitempty"`
	AssignedToDisplay string     `json:"assigned_to_display,omitempty"`
	CreatedBy         *UserDTO   `json:"created_by,omitempty"`
	UpdatedBy         *UserDTO   `json:"updated_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TaskFormDTO is the update form view model
type TaskFormDTO struct {
	Task               TaskDTO         `json:"task"`
	AssignedToEditable bool            `json:"assigned_to_editable"`
	Priorities         []LookupDTO     `json:"priorities"`
	Statuses           []LookupDTO     `json:"statuses"`
	Assignees          []UserChoiceDTO `json:"assignees"`
}

// CalendarPageDTO lists the choices of the calendar create form
type CalendarPageDTO struct {
	Priorities []LookupDTO     `json:"priorities"`
	Assignees  []UserChoiceDTO `json:"assignees"`
}

// CalendarEventDTO is one entry of the calendar feed
type CalendarEventDTO struct {
	ID                  uint64  `json:"id"`
	Title               string  `json:"title"`
	Start               string  `json:"start"`
	Description         *string `json:"description"`
	Priority            string  `json:"priority"`
	PriorityLevelColour string  `json:"priority_level_colour"`
	Status              string  `json:"status"`
	StatusColour        string  `json:"status_colour"`
}

// GeneratedTaskDTO is an AI task suggestion
type GeneratedTaskDTO struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

// Conversion functions

func ToPriorityDTO(priority models.Priority) LookupDTO {
	return LookupDTO{
		ID:     priority.ID,
		Name:   string(priority.Name),
		Label:  priority.Name.Label(),
		Colour: priority.Name.Colour(),
	}
}

func ToStatusDTO(status models.Status) LookupDTO {
	return LookupDTO{
		ID:     status.ID,
		Name:   string(status.Name),
		Label:  status.Name.Label(),
		Colour: status.Name.Colour(),
	}
}

func ToPriorityDTOs(priorities []models.Priority) []LookupDTO {
	dtos := make([]LookupDTO, len(priorities))
	for i, priority := range priorities {
		dtos[i] = ToPriorityDTO(priority)
	}
	return dtos
}

func ToStatusDTOs(statuses []models.Status) []LookupDTO {
	dtos := make([]LookupDTO, len(statuses))
	for i, status := range statuses {
		dtos[i] = ToStatusDTO(status)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO. Associations that were not loaded are left out.
func ToTaskDTO(task models.Task, viewer *models.User) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  deref(task.Description),
		DueDate:      formatDate(task.DueDate),
		AssignedToID: task.AssignedToID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	if task.Priority.ID != 0 {
		priority := ToPriorityDTO(task.Priority)
		dto.Priority = &priority
	}
	if task.Status.ID != 0 {
		status := ToStatusDTO(task.Status)
		dto.Status = &status
	}
	if task.AssignedTo.ID != 0 {
		assignedTo := ToUserDTO(task.AssignedTo)
		dto.AssignedTo = &assignedTo
		dto.AssignedToDisplay = UserDisplay(task.AssignedTo, viewer)
	}
	if task.CreatedBy.ID != 0 {
		createdBy := ToUserDTO(task.CreatedBy)
		dto.CreatedBy = &createdBy
	}
	if task.UpdatedBy.ID != 0 {
		updatedBy := ToUserDTO(task.UpdatedBy)
		dto.UpdatedBy = &updatedBy
	}

	return dto
}

func ToTaskDTOs(tasks []models.Task, viewer *models.User) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task, viewer)
	}
	return dtos
}

func ToTaskFormDTO(form services.TaskFormData, viewer *models.User) TaskFormDTO {
	return TaskFormDTO{
		Task:               ToTaskDTO(*form.Task, viewer),
		AssignedToEditable: form.AssignedToEditable,
		Priorities:         ToPriorityDTOs(form.Priorities),
		Statuses:           ToStatusDTOs(form.Statuses),
		Assignees:          ToUserChoiceDTOs(form.Assignees),
	}
}

func ToCalendarPageDTO(page services.CalendarPageData) CalendarPageDTO {
	return CalendarPageDTO{
		Priorities: ToPriorityDTOs(page.Priorities),
		Assignees:  ToUserChoiceDTOs(page.Assignees),
	}
}

// ToCalendarEventDTOs skips tasks without a due date
func ToCalendarEventDTOs(tasks []models.Task) []CalendarEventDTO {
	events := make([]CalendarEventDTO, 0, len(tasks))
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		events = append(events, CalendarEventDTO{
			ID:                  task.ID,
			Title:               task.Title,
			Start:               task.DueDate.Format(dateLayout),
			Description:         task.Description,
			Priority:            string(task.Priority.Name),
			PriorityLevelColour: task.Priority.Name.Colour(),
			Status:              string(task.Status.Name),
			StatusColour:        task.Status.Name.Colour(),
		})
	}
	return events
}

func ToGeneratedTaskDTOs(drafts []services.GeneratedTask) []GeneratedTaskDTO {
	dtos := make([]GeneratedTaskDTO, len(drafts))
	for i, draft := range drafts {
		dtos[i] = GeneratedTaskDTO{
			Title:       draft.Title,
			Description: draft.Description,
			DueDate:     draft.DueDate,
		}
	}
	return dtos
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(dateLayout)
	return &formatted
}
