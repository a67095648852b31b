package repository

import (
	"context"
	"time"

	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination, newest first
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves all task columns
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task, returning gorm.ErrRecordNotFound when nothing was deleted
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedToID *uint64
	WithDueDate  bool
	Preload      []string
	// Pagination is optional; nil lists every matching task.
	Pagination *utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds exactly one user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// EmailExists reports whether another user already owns the email, ignoring case
	EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error)

	// Update saves all user columns
	Update(ctx context.Context, user *models.User) error

	// UpdateLastLogin stamps the last successful login
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error

	// ListActive lists users that can be assigned tasks
	ListActive(ctx context.Context) ([]models.User, error)

	// ListWithPermission lists users granted the permission, optionally including superusers
	ListWithPermission(ctx context.Context, codename string, isActive bool, includeSuperusers bool) ([]models.User, error)

	// HasPermission reports whether the permission was granted directly to the user
	HasPermission(ctx context.Context, userID uint64, codename string) (bool, error)

	// GrantPermission grants a permission to a user
	GrantPermission(ctx context.Context, userID uint64, codename string) error
}

// ReferenceRepository defines the append-only reference log
type ReferenceRepository interface {
	// Create appends one reference row and returns it with its assigned ID
	Create(ctx context.Context) (*models.Reference, error)
}

// LookupRepository defines access to the priority and status lookup tables
type LookupRepository interface {
	ListPriorities(ctx context.Context) ([]models.Priority, error)
	ListStatuses(ctx context.Context) ([]models.Status, error)
	FindPriorityByID(ctx context.Context, id uint64) (*models.Priority, error)
	FindStatusByID(ctx context.Context, id uint64) (*models.Status, error)
	FindStatusByName(ctx context.Context, name models.StatusType) (*models.Status, error)
	CreatePriority(ctx context.Context, priority *models.Priority) error
	CreateStatus(ctx context.Context, status *models.Status) error
}
