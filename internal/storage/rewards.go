package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/encrypted69-code/upirefer/internal/models"
)

type Rewards struct {
	db *gorm.DB
}

func NewRewards(db *gorm.DB) *Rewards {
	return &Rewards{db: db}
}

func (r *Rewards) Create(ctx context.Context, reward *models.ReferralReward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

// TotalForReferrer sums every credit ever paid to userID by the referral
// engine, across both reward levels.
func (r *Rewards) TotalForReferrer(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ReferralReward{}).
		Where("referrer_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
