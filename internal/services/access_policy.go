package services

import "github.com/yukikurage/tasktrack/internal/models"

// CanManageTasks gates the global task views.
func CanManageTasks(user *models.User) bool {
	return user != nil && user.IsSuperuser
}

// TaskFormEditable reports whether the assignee field of the task form may be changed.
// Evaluated once per request; the result travels in the view model.
func TaskFormEditable(user *models.User) bool {
	return CanManageTasks(user)
}

// CanAccessTask allows superusers any task and everyone else their own assignments.
func CanAccessTask(user *models.User, task *models.Task) bool {
	if user == nil || task == nil {
		return false
	}
	return CanManageTasks(user) || task.AssignedToID == user.ID
}
