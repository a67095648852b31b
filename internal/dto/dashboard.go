package dto

import (
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/services"
	"github.com/yukikurage/tasktrack/internal/utils"
)

// TaskCountsDTO holds status counts and, on the dashboard, priority counts
type TaskCountsDTO struct {
	Pending          int  `json:"pending"`
	InProgress       int  `json:"in_progress"`
	Completed        int  `json:"completed"`
	Cancelled        int  `json:"cancelled"`
	LowPriority      *int `json:"low_priority,omitempty"`
	MediumPriority   *int `json:"medium_priority,omitempty"`
	HighPriority     *int `json:"high_priority,omitempty"`
	CriticalPriority *int `json:"critical_priority,omitempty"`
}

// HomeDTO is the owner-scoped landing page
type HomeDTO struct {
	TaskCounts TaskCountsDTO `json:"task_counts"`
	TaskList   []TaskDTO     `json:"task_list"`
}

// DashboardDTO is the superuser dashboard
type DashboardDTO struct {
	Year                       int            `json:"year"`
	TaskCounts                 TaskCountsDTO  `json:"task_counts"`
	DueTasksCountByMonth       map[string]int `json:"due_tasks_count_by_month"`
	CompletedTasksCountByMonth map[string]int `json:"completed_tasks_count_by_month"`
}

// TaskBoardDTO is the global task list page
type TaskBoardDTO struct {
	TaskCounts TaskCountsDTO            `json:"task_counts"`
	TaskList   []TaskDTO                `json:"task_list"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func toStatusCountsDTO(counts services.StatusCounts) TaskCountsDTO {
	return TaskCountsDTO{
		Pending:    counts.Pending,
		InProgress: counts.InProgress,
		Completed:  counts.Completed,
		Cancelled:  counts.Cancelled,
	}
}

func ToHomeDTO(data services.HomeData, viewer *models.User) HomeDTO {
	return HomeDTO{
		TaskCounts: toStatusCountsDTO(data.Counts),
		TaskList:   ToTaskDTOs(data.Tasks, viewer),
	}
}

func ToDashboardDTO(data services.DashboardData) DashboardDTO {
	counts := toStatusCountsDTO(data.Counts)
	low, medium, high, critical := data.PriorityCounts.Low, data.PriorityCounts.Medium, data.PriorityCounts.High, data.PriorityCounts.Critical
	counts.LowPriority = &low
	counts.MediumPriority = &medium
	counts.HighPriority = &high
	counts.CriticalPriority = &critical

	return DashboardDTO{
		Year:                       data.Year,
		TaskCounts:                 counts,
		DueTasksCountByMonth:       data.DueByMonth,
		CompletedTasksCountByMonth: data.CompletedByMonth,
	}
}

func ToTaskBoardDTO(data services.TaskBoardData, page utils.PaginationParams, viewer *models.User) TaskBoardDTO {
	return TaskBoardDTO{
		TaskCounts: toStatusCountsDTO(data.Counts),
		TaskList:   ToTaskDTOs(data.Tasks, viewer),
		Pagination: utils.NewPaginationResponse(page, data.Total),
	}
}
