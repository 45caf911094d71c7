package repository

import (
	"context"
	"skillswap/models"

	"gorm.io/gorm"
)

// LedgerRepository defines the interface for the per-user teach/learn skill
// ledgers. All reads are ordered by skill id ascending so that the matching
// engine's "first common skill" selection is deterministic.
type LedgerRepository interface {
	AddTeach(ctx context.Context, entry *models.TeachSkill) error
	AddLearn(ctx context.Context, entry *models.LearnSkill) error
	TeachByUser(ctx context.Context, userID uint) ([]models.TeachSkill, error)
	LearnByUser(ctx context.Context, userID uint) ([]models.LearnSkill, error)
	AllTeach(ctx context.Context) ([]models.TeachSkill, error)
	AllLearn(ctx context.Context) ([]models.LearnSkill, error)
	TeachBySkill(ctx context.Context, skillID uint) ([]models.TeachSkill, error)
	LearnBySkill(ctx context.Context, skillID uint) ([]models.LearnSkill, error)
	HasTeach(ctx context.Context, userID, skillID uint) (bool, error)
	HasLearn(ctx context.Context, userID, skillID uint) (bool, error)
	RemoveTeach(ctx context.Context, userID, skillID uint) error
	RemoveLearn(ctx context.Context, userID, skillID uint) error
}

// ledgerRepository implements LedgerRepository
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) AddTeach(ctx context.Context, entry *models.TeachSkill) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ledgerRepository) AddLearn(ctx context.Context, entry *models.LearnSkill) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ledgerRepository) TeachByUser(ctx context.Context, userID uint) ([]models.TeachSkill, error) {
	var entries []models.TeachSkill
	if err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("user_id = ?", userID).
		Order("skill_id ASC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *ledgerRepository) LearnByUser(ctx context.Context, userID uint) ([]models.LearnSkill, error) {
	var entries []models.LearnSkill
	if err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("user_id = ?", userID).
		Order("skill_id ASC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *ledgerRepository) AllTeach(ctx context.Context) ([]models.TeachSkill, error) {
	var entries []models.TeachSkill
	if err := r.db.WithContext(ctx).
		Preload("Skill").
		Order("user_id ASC, skill_id ASC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *ledgerRepository) AllLearn(ctx context.Context) ([]models.LearnSkill, error) {
	var entries []models.LearnSkill
	if err := r.db.WithContext(ctx).
		Preload("Skill").
		Order("user_id ASC, skill_id ASC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *ledgerRepository) TeachBySkill(ctx context.Context, skillID uint) ([]models.TeachSkill, error) {
	var entries []models.TeachSkill
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("skill_id = ?", skillID).
		Order("user_id ASC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *ledgerRepository) LearnBySkill(ctx context.Context, skillID uint) ([]models.LearnSkill, error) {
	var entries []models.LearnSkill
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("skill_id = ?", skillID).
		Order("user_id ASC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *ledgerRepository) HasTeach(ctx context.Context, userID, skillID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TeachSkill{}).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) HasLearn(ctx context.Context, userID, skillID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LearnSkill{}).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) RemoveTeach(ctx context.Context, userID, skillID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Delete(&models.TeachSkill{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ledgerRepository) RemoveLearn(ctx context.Context, userID, skillID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Delete(&models.LearnSkill{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
