package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/encrypted69-code/upirefer/internal/logger"
)

const (
	DefaultLeaderboardLimit = 10
	leaderboardCacheTTL     = 30 * time.Second
)

type LeaderboardEntry struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

// TopReferrers ranks users by balance, highest first, at most limit entries.
// Ties fall back to the store's natural order. Results are cached briefly in
// Redis; the database stays the source of truth.
func (s *Service) TopReferrers(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	key := fmt.Sprintf("leaderboard:%d", limit)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal([]byte(raw), &entries); err == nil {
				return entries, nil
			}
		}
	}

	users, err := s.store.Users.TopByBalance(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{UserID: u.UserID, Balance: u.Balance})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, raw, leaderboardCacheTTL).Err(); err != nil {
				logger.Log.Warn("Failed to cache leaderboard", zap.Error(err))
			}
		}
	}

	return entries, nil
}
