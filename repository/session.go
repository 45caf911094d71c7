package repository

import (
	"context"
	"skillswap/models"

	"gorm.io/gorm"
)

// SessionRepository defines the interface for session data operations
type SessionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Session, error)
	// GetByIDForUpdate locks the session row for the duration of the
	// surrounding transaction. Must be called with a transaction handle.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Session, error)
	GetBySwapRequestID(ctx context.Context, swapRequestID uint) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	ListByUser(ctx context.Context, userID uint) ([]models.Session, error)
}

// sessionRepository implements SessionRepository
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) preloaded(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("SwapRequest").
		Preload("SwapRequest.Sender").
		Preload("SwapRequest.Receiver").
		Preload("SwapRequest.TeachSkill").
		Preload("SwapRequest.LearnSkill")
}

func (r *sessionRepository) getByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	var session models.Session
	if err := r.preloaded(tx).WithContext(ctx).First(&session, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Session", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &session, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (*models.Session, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *sessionRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Session, error) {
	return r.getByID(ctx, lockForUpdate(r.db), id)
}

// GetBySwapRequestID returns (nil, nil) when no session exists for the request.
func (r *sessionRepository) GetBySwapRequestID(ctx context.Context, swapRequestID uint) (*models.Session, error) {
	var session models.Session
	err := r.preloaded(r.db).WithContext(ctx).
		Where("swap_request_id = ?", swapRequestID).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := r.preloaded(r.db).WithContext(ctx).
		Joins("JOIN swap_requests ON swap_requests.id = sessions.swap_request_id").
		Where("swap_requests.sender_id = ? OR swap_requests.receiver_id = ?", userID, userID).
		Order("sessions.created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return sessions, nil
}
