package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/encrypted69-code/upirefer/internal/models"
)

type Withdrawals struct {
	db *gorm.DB
}

func NewWithdrawals(db *gorm.DB) *Withdrawals {
	return &Withdrawals{db: db}
}

func (r *Withdrawals) Create(ctx context.Context, w *models.Withdrawal) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Withdrawals) FindByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Approve flips a pending withdrawal to approved. Reports false when the
// record is missing or no longer pending, so a second approval cannot
// transition it twice.
func (r *Withdrawals) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, models.WithdrawalStatusPending).
		Update("status", models.WithdrawalStatusApproved)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Withdrawals) CountByStatus(ctx context.Context, status models.WithdrawalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
