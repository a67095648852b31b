package repository

import (
	"context"

	"github.com/yukikurage/tasktrack/internal/models"
	"gorm.io/gorm"
)

// GormReferenceRepository is a GORM implementation of ReferenceRepository
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// Create appends one reference row; the database assigns the ID
func (r *GormReferenceRepository) Create(ctx context.Context) (*models.Reference, error) {
	reference := &models.Reference{}
	if err := r.db.WithContext(ctx).Create(reference).Error; err != nil {
		return nil, err
	}
	return reference, nil
}
