package repository

import (
	"context"

	"github.com/yukikurage/tasktrack/internal/models"
	"gorm.io/gorm"
)

// GormLookupRepository is a GORM implementation of LookupRepository
type GormLookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository creates a new LookupRepository
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &GormLookupRepository{db: db}
}

func (r *GormLookupRepository) ListPriorities(ctx context.Context) ([]models.Priority, error) {
	var priorities []models.Priority
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}

func (r *GormLookupRepository) ListStatuses(ctx context.Context) ([]models.Status, error) {
	var statuses []models.Status
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *GormLookupRepository) FindPriorityByID(ctx context.Context, id uint64) (*models.Priority, error) {
	var priority models.Priority
	if err := r.db.WithContext(ctx).First(&priority, id).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *GormLookupRepository) FindStatusByID(ctx context.Context, id uint64) (*models.Status, error) {
	var status models.Status
	if err := r.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *GormLookupRepository) FindStatusByName(ctx context.Context, name models.StatusType) (*models.Status, error) {
	var status models.Status
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// CreatePriority inserts a priority; the save hook rejects duplicates
func (r *GormLookupRepository) CreatePriority(ctx context.Context, priority *models.Priority) error {
	return r.db.WithContext(ctx).Create(priority).Error
}

// CreateStatus inserts a status; the save hook rejects duplicates
func (r *GormLookupRepository) CreateStatus(ctx context.Context, status *models.Status) error {
	return r.db.WithContext(ctx).Create(status).Error
}
