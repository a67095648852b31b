package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/tasktrack/internal/dto"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/services"
	"github.com/yukikurage/tasktrack/internal/testutil"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	app *testApp

	owner     *models.User
	other     *models.User
	root      *models.User
	ownerAuth []*http.Cookie
	otherAuth []*http.Cookie
	rootAuth  []*http.Cookie
}

func (suite *TaskHandlerTestSuite) SetupTest() {
	t := suite.T()
	suite.app = newTestApp(t)

	suite.owner = suite.app.createUser(t, "owner@example.com", false)
	suite.other = suite.app.createUser(t, "other@example.com", false)
	suite.root = suite.app.createUser(t, "root@example.com", true)

	suite.ownerAuth = suite.app.login(t, "owner@example.com")
	suite.otherAuth = suite.app.login(t, "other@example.com")
	suite.rootAuth = suite.app.login(t, "root@example.com")
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, assignee *models.User) *models.Task {
	return testutil.CreateTask(suite.T(), suite.app.db, title, assignee, suite.root, models.StatusPending)
}

func (suite *TaskHandlerTestSuite) taskCount() int64 {
	var count int64
	suite.Require().NoError(suite.app.db.Model(&models.Task{}).Count(&count).Error)
	return count
}

func (suite *TaskHandlerTestSuite) createPayload(title, due string) map[string]any {
	return map[string]any{
		"title":       title,
		"due_date":    due,
		"description": "details",
		"priority":    testutil.Priority(suite.T(), suite.app.db, models.PriorityHigh).ID,
		"assigned_to": suite.owner.ID,
	}
}

func (suite *TaskHandlerTestSuite) TestAnonymousRedirectsToLogin() {
	for _, path := range []string{"/", "/dashboard", "/tasks-list/", "/task-details/1/"} {
		w := suite.app.do(suite.T(), http.MethodGet, path, nil, nil)
		suite.Equal(http.StatusFound, w.Code, path)
		suite.Contains(w.Header().Get("Location"), "/login/?next=", path)
	}
}

func (suite *TaskHandlerTestSuite) TestNonSuperuserRedirectsHome() {
	for _, path := range []string{"/dashboard", "/tasks-list/", "/calendar/", "/api/tasks/"} {
		w := suite.app.do(suite.T(), http.MethodGet, path, nil, suite.ownerAuth)
		suite.Equal(http.StatusFound, w.Code, path)
		suite.Equal("/", w.Header().Get("Location"), path)
	}
}

func (suite *TaskHandlerTestSuite) TestHome() {
	suite.createTestTask("Mine", suite.owner)
	suite.createTestTask("Theirs", suite.other)

	w := suite.app.do(suite.T(), http.MethodGet, "/", nil, suite.ownerAuth)
	suite.Require().Equal(http.StatusOK, w.Code)

	home := decode[dto.HomeDTO](suite.T(), w)
	suite.Require().Len(home.TaskList, 1)
	suite.Equal("Mine", home.TaskList[0].Title)
	suite.Equal("Me", home.TaskList[0].AssignedToDisplay)
	suite.Equal(1, home.TaskCounts.Pending)
}

func (suite *TaskHandlerTestSuite) TestDashboard() {
	suite.createTestTask("One", suite.owner)
	suite.createTestTask("Two", suite.other)

	w := suite.app.do(suite.T(), http.MethodGet, "/dashboard", nil, suite.rootAuth)
	suite.Require().Equal(http.StatusOK, w.Code)

	dashboard := decode[dto.DashboardDTO](suite.T(), w)
	suite.Equal(time.Now().UTC().Year(), dashboard.Year)
	suite.Equal(2, dashboard.TaskCounts.Pending)
	suite.Require().NotNil(dashboard.TaskCounts.MediumPriority)
	suite.Equal(2, *dashboard.TaskCounts.MediumPriority)
	suite.Len(dashboard.DueTasksCountByMonth, 12)
	suite.Len(dashboard.CompletedTasksCountByMonth, 12)
}

func (suite *TaskHandlerTestSuite) TestListTasks() {
	for i := 0; i < 3; i++ {
		suite.createTestTask(fmt.Sprintf("Task %d", i), suite.owner)
	}

	w := suite.app.do(suite.T(), http.MethodGet, "/tasks-list/?page=1&limit=2", nil, suite.rootAuth)
	suite.Require().Equal(http.StatusOK, w.Code)

	board := decode[dto.TaskBoardDTO](suite.T(), w)
	suite.Len(board.TaskList, 2)
	suite.Equal("Task 2", board.TaskList[0].Title)
	suite.Equal(int64(3), board.Pagination.Total)
	suite.Equal(2, board.Pagination.TotalPages)
	suite.Equal(3, board.TaskCounts.Pending)
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	w := suite.app.do(suite.T(), http.MethodPost, "/create-task/", suite.createPayload("Write docs", due), suite.rootAuth)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	task := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("Write docs", task.Title)
	suite.Require().NotNil(task.DueDate)
	suite.Equal(due, *task.DueDate)
	suite.Require().NotNil(task.Status)
	suite.Equal(string(models.StatusPending), task.Status.Name)
	suite.Equal(suite.owner.ID, task.AssignedToID)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_PastDueDate() {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	w := suite.app.do(suite.T(), http.MethodPost, "/create-task/", suite.createPayload("Late", yesterday), suite.rootAuth)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	suite.Equal([]string{models.DueDateBeforeCreationMessage}, decode[validationResponse](suite.T(), w).Details["due_date"])
	suite.Zero(suite.taskCount())
}

func (suite *TaskHandlerTestSuite) TestCreateTask_FromCalendar() {
	w := suite.app.do(suite.T(), http.MethodPost, "/calendar/", suite.createPayload("From calendar", ""), suite.rootAuth)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Nil(decode[dto.TaskDTO](suite.T(), w).DueDate)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_NonSuperuser() {
	w := suite.app.do(suite.T(), http.MethodPost, "/create-task/", suite.createPayload("Sneaky", ""), suite.ownerAuth)
	suite.Equal(http.StatusFound, w.Code)
	suite.Zero(suite.taskCount())
}

func (suite *TaskHandlerTestSuite) TestGetTask() {
	task := suite.createTestTask("Mine", suite.owner)
	path := fmt.Sprintf("/task-details/%d/", task.ID)

	w := suite.app.do(suite.T(), http.MethodGet, path, nil, suite.ownerAuth)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("Mine", decode[dto.TaskDTO](suite.T(), w).Title)

	w = suite.app.do(suite.T(), http.MethodGet, path, nil, suite.rootAuth)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.app.do(suite.T(), http.MethodGet, path, nil, suite.otherAuth)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.app.do(suite.T(), http.MethodGet, "/task-details/abc/", nil, suite.ownerAuth)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestTaskForm() {
	task := suite.createTestTask("Mine", suite.owner)
	path := fmt.Sprintf("/task-update/%d/", task.ID)

	w := suite.app.do(suite.T(), http.MethodGet, path, nil, suite.ownerAuth)
	suite.Require().Equal(http.StatusOK, w.Code)
	form := decode[dto.TaskFormDTO](suite.T(), w)
	suite.False(form.AssignedToEditable)
	suite.Len(form.Statuses, 4)
	suite.Len(form.Assignees, 3)

	w = suite.app.do(suite.T(), http.MethodGet, path, nil, suite.rootAuth)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.True(decode[dto.TaskFormDTO](suite.T(), w).AssignedToEditable)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_AssigneeForcedForOwner() {
	task := suite.createTestTask("Mine", suite.owner)

	w := suite.app.do(suite.T(), http.MethodPost, fmt.Sprintf("/task-update/%d/", task.ID), map[string]any{
		"title":       "Mine, renamed",
		"priority":    testutil.Priority(suite.T(), suite.app.db, models.PriorityLow).ID,
		"status":      testutil.Status(suite.T(), suite.app.db, models.StatusCompleted).ID,
		"assigned_to": suite.other.ID,
	}, suite.ownerAuth)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	updated := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("Mine, renamed", updated.Title)
	suite.Equal(suite.owner.ID, updated.AssignedToID)
	suite.Equal(string(models.StatusCompleted), updated.Status.Name)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NonOwner() {
	task := suite.createTestTask("Mine", suite.owner)

	w := suite.app.do(suite.T(), http.MethodPost, fmt.Sprintf("/task-update/%d/", task.ID), map[string]any{
		"title":    "Hijacked",
		"priority": testutil.Priority(suite.T(), suite.app.db, models.PriorityLow).ID,
		"status":   testutil.Status(suite.T(), suite.app.db, models.StatusCompleted).ID,
	}, suite.otherAuth)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTestTask("Doomed", suite.owner)

	w := suite.app.do(suite.T(), http.MethodGet, fmt.Sprintf("/delete-task/%d", task.ID), nil, suite.ownerAuth)
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/", w.Header().Get("Location"))
	suite.Equal(int64(1), suite.taskCount())

	w = suite.app.do(suite.T(), http.MethodPost, fmt.Sprintf("/delete-task/%d", task.ID), nil, suite.rootAuth)
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/tasks-list/", w.Header().Get("Location"))
	suite.Zero(suite.taskCount())
}

func (suite *TaskHandlerTestSuite) TestDeleteCalendarTask() {
	task := suite.createTestTask("On the calendar", suite.owner)
	path := fmt.Sprintf("/delete-calendar-task/%d/", task.ID)

	w := suite.app.do(suite.T(), http.MethodGet, path, nil, suite.rootAuth)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.JSONEq(`{"error":"Invalid request"}`, w.Body.String())
	suite.Equal(int64(1), suite.taskCount())

	w = suite.app.do(suite.T(), http.MethodPost, path, nil, suite.rootAuth)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(int64(1), suite.taskCount())

	w = suite.app.do(suite.T(), http.MethodDelete, path, nil, suite.rootAuth)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"message":"Task deleted successfully"}`, w.Body.String())
	suite.Zero(suite.taskCount())

	w = suite.app.do(suite.T(), http.MethodDelete, path, nil, suite.rootAuth)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCalendarEvents() {
	suite.createTestTask("Undated", suite.owner)
	due := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	w := suite.app.do(suite.T(), http.MethodPost, "/create-task/", suite.createPayload("Dated", due), suite.rootAuth)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.app.do(suite.T(), http.MethodGet, "/api/tasks/", nil, suite.rootAuth)
	suite.Require().Equal(http.StatusOK, w.Code)

	events := decode[[]dto.CalendarEventDTO](suite.T(), w)
	suite.Require().Len(events, 1)
	suite.Equal("Dated", events[0].Title)
	suite.Equal(due, events[0].Start)
	suite.Equal("HIGH", events[0].Priority)
	suite.Equal(models.PriorityHigh.Colour(), events[0].PriorityLevelColour)
	suite.Equal("PENDING", events[0].Status)
	suite.Equal(models.StatusPending.Colour(), events[0].StatusColour)
}

func (suite *TaskHandlerTestSuite) TestCalendarPage() {
	w := suite.app.do(suite.T(), http.MethodGet, "/calendar/", nil, suite.rootAuth)
	suite.Require().Equal(http.StatusOK, w.Code)

	page := decode[dto.CalendarPageDTO](suite.T(), w)
	suite.Len(page.Priorities, 4)
	suite.Len(page.Assignees, 3)
}

func (suite *TaskHandlerTestSuite) TestDraftTasks_NotConfigured() {
	w := suite.app.do(suite.T(), http.MethodPost, "/api/tasks/draft", map[string]string{"text": "Book the venue by Friday"}, suite.rootAuth)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Contains(w.Body.String(), services.ErrAIServiceNotConfigured.Error())
}
