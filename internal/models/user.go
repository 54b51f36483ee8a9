package models

import (
	"time"
)

// User is a bot participant. UserID is the platform-assigned Telegram ID and
// doubles as the primary key; no surrogate key is kept.
type User struct {
	UserID       int64  `gorm:"primaryKey;autoIncrement:false"`
	Balance      int64  `gorm:"not null;default:0"`
	ReferralCode string `gorm:"size:32;uniqueIndex;not null"`
	ReferredBy   *int64 `gorm:"index"`
	UPIID        string `gorm:"column:upi_id;size:255"`
	Level        int    `gorm:"not null;default:1"`
	// WithdrawnTotal mirrors the sum of this user's withdrawal records. A
	// mismatch between the two means a withdrawal transaction was torn and
	// needs manual reconciliation.
	WithdrawnTotal int64 `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
