package repository

import (
	"context"
	"skillswap/models"

	"gorm.io/gorm"
)

// ProgressRepository defines the interface for progress record operations
type ProgressRepository interface {
	CreateBatch(ctx context.Context, records []*models.ProgressRecord) error
	BySession(ctx context.Context, sessionID uint) ([]models.ProgressRecord, error)
	BySessionAndUser(ctx context.Context, sessionID, userID uint) ([]models.ProgressRecord, error)
	Update(ctx context.Context, record *models.ProgressRecord) error
}

// progressRepository implements ProgressRepository
type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new progress record repository
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) CreateBatch(ctx context.Context, records []*models.ProgressRecord) error {
	if err := r.db.WithContext(ctx).Create(records).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *progressRepository) BySession(ctx context.Context, sessionID uint) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	if err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return records, nil
}

func (r *progressRepository) BySessionAndUser(ctx context.Context, sessionID, userID uint) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	if err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return records, nil
}

func (r *progressRepository) Update(ctx context.Context, record *models.ProgressRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
