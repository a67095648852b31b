// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/tasktrack/internal/database"
	"github.com/yukikurage/tasktrack/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated and seeded in-memory SQLite database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection would otherwise get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.MigrateDB(db))
	return db
}

// CreateUser inserts an active user with the given email and flags.
func CreateUser(t *testing.T, db *gorm.DB, username, email string, superuser bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        models.StringPtr(email),
		PasswordHash: models.UnusablePasswordPrefix,
		FirstName:    models.StringPtr("Test"),
		LastName:     models.StringPtr(username),
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Priority returns the seeded priority row.
func Priority(t *testing.T, db *gorm.DB, name models.PriorityLevel) *models.Priority {
	t.Helper()

	var priority models.Priority
	require.NoError(t, db.Where("name = ?", name).Take(&priority).Error)
	return &priority
}

// Status returns the seeded status row.
func Status(t *testing.T, db *gorm.DB, name models.StatusType) *models.Status {
	t.Helper()

	var status models.Status
	require.NoError(t, db.Where("name = ?", name).Take(&status).Error)
	return &status
}

// CreateTask inserts a task assigned to assignee and created by creator.
func CreateTask(t *testing.T, db *gorm.DB, title string, assignee, creator *models.User, status models.StatusType) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:        title,
		PriorityID:   Priority(t, db, models.PriorityMedium).ID,
		StatusID:     Status(t, db, status).ID,
		AssignedToID: assignee.ID,
		CreatedByID:  creator.ID,
		UpdatedByID:  creator.ID,
	}
	require.NoError(t, db.Omit("Priority", "Status", "AssignedTo", "CreatedBy", "UpdatedBy").Create(task).Error)
	return task
}
