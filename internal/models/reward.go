package models

import (
	"time"
)

// ReferralReward is one credit applied by the referral engine, kept as an
// append-only audit trail alongside the balance increment itself.
type ReferralReward struct {
	ID            uint  `gorm:"primaryKey"`
	ReferrerID    int64 `gorm:"not null;index"`
	InvitedUserID int64 `gorm:"not null;index"`
	Level         int   `gorm:"not null"`
	Amount        int64 `gorm:"not null"`
	CreatedAt     time.Time
}
