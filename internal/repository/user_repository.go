package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/tasktrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// ErrPermissionNotFound is returned when granting an unknown permission codename.
var ErrPermissionNotFound = errors.New("user repository: permission not found")

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds exactly one user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether another user already owns the email, ignoring case
func (r *GormUserRepository) EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update saves all user columns
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// UpdateLastLogin stamps the last successful login
func (r *GormUserRepository) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

// ListActive lists users that can be assigned tasks
func (r *GormUserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListWithPermission lists users granted the permission whose active flag equals isActive,
// optionally including superusers
func (r *GormUserRepository) ListWithPermission(ctx context.Context, codename string, isActive bool, includeSuperusers bool) ([]models.User, error) {
	granted := r.db.WithContext(ctx).
		Table("user_permissions").
		Select("user_permissions.user_id").
		Joins("JOIN permissions ON permissions.id = user_permissions.permission_id").
		Where("permissions.codename = ?", codename)

	query := r.db.WithContext(ctx).Model(&models.User{})
	if includeSuperusers {
		query = query.Where("users.id IN (?) OR users.is_superuser = ?", granted, true)
	} else {
		query = query.Where("users.id IN (?)", granted)
	}
	query = query.Where("users.is_active = ?", isActive)

	var users []models.User
	if err := query.Order("users.id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// HasPermission reports whether the permission was granted directly to the user
func (r *GormUserRepository) HasPermission(ctx context.Context, userID uint64, codename string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("user_permissions").
		Joins("JOIN permissions ON permissions.id = user_permissions.permission_id").
		Where("user_permissions.user_id = ? AND permissions.codename = ?", userID, codename).
		Count(&count).Error
	return count > 0, err
}

// GrantPermission grants a permission to a user
func (r *GormUserRepository) GrantPermission(ctx context.Context, userID uint64, codename string) error {
	var permission models.Permission
	if err := r.db.WithContext(ctx).Where("codename = ?", codename).First(&permission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionNotFound
		}
		return err
	}

	user := models.User{ID: userID}
	return r.db.WithContext(ctx).Model(&user).Association("Permissions").Append(&permission)
}
