package repository

import (
	"context"
	"skillswap/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkillRepository defines the interface for skill catalog operations
type SkillRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Skill, error)
	FindOrCreate(ctx context.Context, name, category, description string) (*models.Skill, error)
	List(ctx context.Context) ([]models.Skill, error)
	SearchByName(ctx context.Context, query string) ([]models.Skill, error)
	ListByCategory(ctx context.Context, category string) ([]models.Skill, error)
}

// skillRepository implements SkillRepository
type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	var skill models.Skill
	if err := r.db.WithContext(ctx).First(&skill, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Skill", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &skill, nil
}

// FindOrCreate resolves a skill name to its canonical record, creating it on
// first mention. The insert uses ON CONFLICT DO NOTHING against the unique
// name column so two concurrent first mentions cannot create duplicates.
func (r *skillRepository) FindOrCreate(ctx context.Context, name, category, description string) (*models.Skill, error) {
	skill := models.Skill{Name: name, Category: category, Description: description}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&skill).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if skill.ID != 0 {
		return &skill, nil
	}

	// Lost the race or the skill already existed; fetch the canonical row.
	var existing models.Skill
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &existing, nil
}

func (r *skillRepository) List(ctx context.Context) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

func (r *skillRepository) SearchByName(ctx context.Context, query string) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%").
		Order("name ASC").
		Find(&skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

func (r *skillRepository) ListByCategory(ctx context.Context, category string) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.WithContext(ctx).Where("category = ?", category).Order("name ASC").Find(&skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}
