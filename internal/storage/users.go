package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/encrypted69-code/upirefer/internal/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Users) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Users) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Users) SetUPIID(ctx context.Context, userID int64, upiID string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("upi_id", upiID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Users) AddBalance(ctx context.Context, userID int64, delta int64) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimReferredBy sets referred_by once. It reports false when the user is
// already attributed to a referrer, which is the idempotency guard for the
// referral engine.
func (r *Users) ClaimReferredBy(ctx context.Context, userID, referrerID int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND referred_by IS NULL", userID).
		Update("referred_by", referrerID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DebitAll zeroes the balance only if it still equals expected, bumping
// withdrawn_total by the same amount. Reports false when a concurrent write
// got there first.
func (r *Users) DebitAll(ctx context.Context, userID, expected int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND balance = ?", userID, expected).
		Updates(map[string]interface{}{
			"balance":         0,
			"withdrawn_total": gorm.Expr("withdrawn_total + ?", expected),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReferralIDs lists the users directly referred by userID, oldest first.
func (r *Users) ReferralIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("referred_by = ?", userID).
		Order("created_at").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Users) CountReferrals(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("referred_by = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *Users) SumBalances(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	return total, err
}

func (r *Users) TopByBalance(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("balance DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
