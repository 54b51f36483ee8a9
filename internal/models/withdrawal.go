package models

import (
	"time"

	"github.com/google/uuid"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
)

// Withdrawal is a payout request. Amount and UPIID are snapshots taken at
// request time; the record is never deleted and only ever moves
// pending -> approved.
type Withdrawal struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID    int64            `gorm:"not null;index"`
	Amount    int64            `gorm:"not null"`
	UPIID     string           `gorm:"column:upi_id;size:255;not null"`
	Status    WithdrawalStatus `gorm:"size:16;not null;default:'pending';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
