package repository

import (
	"context"
	"skillswap/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// swapRequestPreloads are the associations callers need on every read.
var swapRequestPreloads = []string{"Sender", "Receiver", "TeachSkill", "LearnSkill"}

// SwapRequestRepository defines the interface for swap request operations
type SwapRequestRepository interface {
	GetByID(ctx context.Context, id uint) (*models.SwapRequest, error)
	// GetByIDForUpdate locks the request row for the duration of the
	// surrounding transaction. Must be called with a transaction handle.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.SwapRequest, error)
	Create(ctx context.Context, request *models.SwapRequest) error
	Update(ctx context.Context, request *models.SwapRequest) error
	ListBySender(ctx context.Context, senderID uint) ([]models.SwapRequest, error)
	ListByReceiver(ctx context.Context, receiverID uint) ([]models.SwapRequest, error)
	PendingExists(ctx context.Context, senderID, receiverID uint) (bool, error)
}

// swapRequestRepository implements SwapRequestRepository
type swapRequestRepository struct {
	db *gorm.DB
}

// NewSwapRequestRepository creates a new swap request repository
func NewSwapRequestRepository(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepository{db: db}
}

func (r *swapRequestRepository) getByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SwapRequest, error) {
	for _, p := range swapRequestPreloads {
		tx = tx.Preload(p)
	}
	var request models.SwapRequest
	if err := tx.WithContext(ctx).First(&request, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Swap request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *swapRequestRepository) GetByID(ctx context.Context, id uint) (*models.SwapRequest, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *swapRequestRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.SwapRequest, error) {
	return r.getByID(ctx, lockForUpdate(r.db), id)
}

func (r *swapRequestRepository) Create(ctx context.Context, request *models.SwapRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *swapRequestRepository) Update(ctx context.Context, request *models.SwapRequest) error {
	if err := r.db.WithContext(ctx).Save(request).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *swapRequestRepository) ListBySender(ctx context.Context, senderID uint) ([]models.SwapRequest, error) {
	return r.list(ctx, "sender_id = ?", senderID)
}

func (r *swapRequestRepository) ListByReceiver(ctx context.Context, receiverID uint) ([]models.SwapRequest, error) {
	return r.list(ctx, "receiver_id = ?", receiverID)
}

func (r *swapRequestRepository) list(ctx context.Context, query string, arg uint) ([]models.SwapRequest, error) {
	tx := r.db.WithContext(ctx)
	for _, p := range swapRequestPreloads {
		tx = tx.Preload(p)
	}
	var requests []models.SwapRequest
	if err := tx.Where(query, arg).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *swapRequestRepository) PendingExists(ctx context.Context, senderID, receiverID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SwapRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?",
			senderID, receiverID, models.SwapRequestStatusPending).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// lockForUpdate adds a row-level lock on dialects that support it. SQLite has
// no SELECT ... FOR UPDATE; its writes serialize on the database lock instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
