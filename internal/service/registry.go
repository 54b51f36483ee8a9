package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/encrypted69-code/upirefer/internal/models"
	"github.com/encrypted69-code/upirefer/internal/storage"
)

// EnsureUser returns the existing record for userID or creates a fresh one.
// The referral code defaults to the stringified user id. Safe to call
// repeatedly and concurrently: a lost insert race falls back to the winner's
// row.
func (s *Service) EnsureUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		UserID:       userID,
		ReferralCode: strconv.FormatInt(userID, 10),
		Level:        1,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return s.store.Users.FindByID(ctx, userID)
		}
		return nil, err
	}
	return user, nil
}

// SetPayoutHandle overwrites the user's UPI handle. The only validation is
// non-emptiness.
func (s *Service) SetPayoutHandle(ctx context.Context, userID int64, handle string) error {
	if handle == "" {
		return ErrEmptyPayoutHandle
	}
	if _, err := s.EnsureUser(ctx, userID); err != nil {
		return err
	}
	return s.store.Users.SetUPIID(ctx, userID, handle)
}

func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	user, err := s.EnsureUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// Profile is the aggregate behind the info command.
type Profile struct {
	Balance       int64
	UPIID         string
	ReferralCount int64
	TotalEarned   int64
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.EnsureUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Users.CountReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.store.Rewards.TotalForReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Balance:       user.Balance,
		UPIID:         user.UPIID,
		ReferralCount: count,
		TotalEarned:   earned,
	}, nil
}
