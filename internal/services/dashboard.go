package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/utils"
)

var monthPrefixes = [12]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// StatusCounts counts tasks per status.
type StatusCounts struct {
	Pending    int
	InProgress int
	Completed  int
	Cancelled  int
}

// PriorityCounts counts tasks per priority.
type PriorityCounts struct {
	Low      int
	Medium   int
	High     int
	Critical int
}

// CountByStatus expects Status to be preloaded.
func CountByStatus(tasks []models.Task) StatusCounts {
	var counts StatusCounts
	for _, task := range tasks {
		switch task.Status.Name {
		case models.StatusPending:
			counts.Pending++
		case models.StatusInProgress:
			counts.InProgress++
		case models.StatusCompleted:
			counts.Completed++
		case models.StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

// CountByPriority expects Priority to be preloaded.
func CountByPriority(tasks []models.Task) PriorityCounts {
	var counts PriorityCounts
	for _, task := range tasks {
		switch task.Priority.Name {
		case models.PriorityLow:
			counts.Low++
		case models.PriorityMedium:
			counts.Medium++
		case models.PriorityHigh:
			counts.High++
		case models.PriorityCritical:
			counts.Critical++
		}
	}
	return counts
}

func emptyMonthCounts(suffix string) map[string]int {
	counts := make(map[string]int, len(monthPrefixes))
	for _, prefix := range monthPrefixes {
		counts[prefix+suffix] = 0
	}
	return counts
}

func monthKey(month time.Month, suffix string) string {
	return monthPrefixes[month-1] + suffix
}

// DueCountsByMonth counts tasks due in each month of year. Due dates are calendar
// dates and are not shifted into loc. All twelve keys are present.
func DueCountsByMonth(tasks []models.Task, year int) map[string]int {
	counts := emptyMonthCounts("_due_tasks")
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		dueYear, dueMonth, _ := task.DueDate.Date()
		if dueYear == year {
			counts[monthKey(dueMonth, "_due_tasks")]++
		}
	}
	return counts
}

// CompletedCountsByMonth counts completed tasks by the month of their last update in loc.
// All twelve keys are present.
func CompletedCountsByMonth(tasks []models.Task, year int, loc *time.Location) map[string]int {
	counts := emptyMonthCounts("_completed_tasks")
	for _, task := range tasks {
		if task.Status.Name != models.StatusCompleted {
			continue
		}
		updated := task.UpdatedAt.In(loc)
		if updated.Year() == year {
			counts[monthKey(updated.Month(), "_completed_tasks")]++
		}
	}
	return counts
}

// HomeData is the owner-scoped landing page.
type HomeData struct {
	Counts StatusCounts
	Tasks  []models.Task
}

// DashboardData is the global superuser dashboard.
type DashboardData struct {
	Year             int
	Counts           StatusCounts
	PriorityCounts   PriorityCounts
	DueByMonth       map[string]int
	CompletedByMonth map[string]int
}

// TaskBoardData is the global task list with status counts.
type TaskBoardData struct {
	Counts StatusCounts
	Tasks  []models.Task
	Total  int64
}

// DashboardService computes the read-only dashboard views.
type DashboardService struct {
	taskRepo repository.TaskRepository
	loc      *time.Location
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(taskRepo repository.TaskRepository, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		taskRepo: taskRepo,
		loc:      loc,
		now:      time.Now,
	}
}

var listPreloads = []string{"Priority", "Status", "AssignedTo"}

// Home counts and lists the tasks assigned to user, newest first.
func (s *DashboardService) Home(ctx context.Context, user *models.User) (*HomeData, error) {
	userID := user.ID
	tasks, _, err := s.taskRepo.List(ctx, repository.TaskFilter{
		AssignedToID: &userID,
		Preload:      listPreloads,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &HomeData{
		Counts: CountByStatus(tasks),
		Tasks:  tasks,
	}, nil
}

// Dashboard aggregates every task for the current year.
func (s *DashboardService) Dashboard(ctx context.Context) (*DashboardData, error) {
	tasks, _, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Preload: []string{"Priority", "Status"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	year := s.now().In(s.loc).Year()
	return &DashboardData{
		Year:             year,
		Counts:           CountByStatus(tasks),
		PriorityCounts:   CountByPriority(tasks),
		DueByMonth:       DueCountsByMonth(tasks, year),
		CompletedByMonth: CompletedCountsByMonth(tasks, year, s.loc),
	}, nil
}

// TaskBoard counts every task by status and returns one page of the list.
func (s *DashboardService) TaskBoard(ctx context.Context, page utils.PaginationParams) (*TaskBoardData, error) {
	all, _, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Preload: []string{"Status"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Preload:    listPreloads,
		Pagination: &page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskBoardData{
		Counts: CountByStatus(all),
		Tasks:  tasks,
		Total:  total,
	}, nil
}
