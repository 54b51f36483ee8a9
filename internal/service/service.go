package service

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/encrypted69-code/upirefer/internal/config"
	"github.com/encrypted69-code/upirefer/internal/payout"
	"github.com/encrypted69-code/upirefer/internal/storage"
)

// User-facing rejections. The transport layer maps these to plain reply text;
// anything not in this list is a system error and must not leak past a
// generic message.
var (
	ErrBelowMinimum         = errors.New("balance below minimum withdrawal")
	ErrNoPayoutHandle       = errors.New("payout handle not set")
	ErrEmptyPayoutHandle    = errors.New("payout handle must not be empty")
	ErrWithdrawalNotPending = errors.New("no such pending withdrawal")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrConflict             = errors.New("conflicting concurrent update")
)

// Service implements the referral ledger and withdrawal workflow. It is
// transport-agnostic: the Telegram layer and the reconciliation worker both
// call into it, and it keeps no state of its own beyond the wired
// collaborators.
type Service struct {
	store   *storage.Storage
	cache   *redis.Client
	gateway payout.Gateway
	cfg     *config.Config
	admins  map[int64]struct{}
}

// New builds a Service. cache may be nil, in which case leaderboard reads
// always hit the database.
func New(store *storage.Storage, cache *redis.Client, gateway payout.Gateway, cfg *config.Config) *Service {
	admins := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}
	return &Service{
		store:   store,
		cache:   cache,
		gateway: gateway,
		cfg:     cfg,
		admins:  admins,
	}
}

// IsAdmin is the capability check guarding admin operations.
func (s *Service) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// MinWithdraw exposes the configured threshold for user-facing messages.
func (s *Service) MinWithdraw() int64 {
	return s.cfg.MinWithdraw
}
