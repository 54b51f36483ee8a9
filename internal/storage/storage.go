package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Storage bundles the repositories over a single gorm handle so that a group
// of writes can share one transaction via Transaction.
type Storage struct {
	db          *gorm.DB
	Users       *Users
	Withdrawals *Withdrawals
	Rewards     *Rewards
}

func New(db *gorm.DB) *Storage {
	return &Storage{
		db:          db,
		Users:       NewUsers(db),
		Withdrawals: NewWithdrawals(db),
		Rewards:     NewRewards(db),
	}
}

// Transaction runs fn against a Storage bound to a database transaction.
// Returning an error rolls everything back.
func (s *Storage) Transaction(ctx context.Context, fn func(tx *Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(txdb *gorm.DB) error {
		return fn(New(txdb))
	})
}

// UnreconciledUserIDs reports users whose withdrawn_total bookkeeping does
// not match the sum of their withdrawal records. A non-empty result means a
// withdrawal write was torn and needs manual attention.
func (s *Storage) UnreconciledUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT u.user_id FROM users u
		LEFT JOIN (
			SELECT user_id, SUM(amount) AS total FROM withdrawals GROUP BY user_id
		) w ON w.user_id = u.user_id
		WHERE u.withdrawn_total <> COALESCE(w.total, 0)
		ORDER BY u.user_id`).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
