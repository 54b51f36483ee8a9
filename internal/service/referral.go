package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/encrypted69-code/upirefer/internal/logger"
	"github.com/encrypted69-code/upirefer/internal/models"
	"github.com/encrypted69-code/upirefer/internal/storage"
)

// ApplyReferral attributes newUserID to the owner of code and pays out the
// two-level rewards. An empty, self-referencing, or unknown code is a no-op,
// never an error. The operation runs at most once per new user: the
// referred_by claim is a conditional write, and all credits share its
// transaction, so a retry after a partial failure either completes the whole
// attribution or does nothing.
func (s *Service) ApplyReferral(ctx context.Context, newUserID int64, code string) error {
	if code == "" || code == strconv.FormatInt(newUserID, 10) {
		return nil
	}

	referrer, err := s.store.Users.FindByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if referrer.UserID == newUserID {
		return nil
	}

	return s.store.Transaction(ctx, func(tx *storage.Storage) error {
		claimed, err := tx.Users.ClaimReferredBy(ctx, newUserID, referrer.UserID)
		if err != nil {
			return err
		}
		if !claimed {
			// Already attributed, nothing to credit.
			return nil
		}

		if err := tx.Users.AddBalance(ctx, referrer.UserID, s.cfg.Level1Reward); err != nil {
			return err
		}
		if err := tx.Rewards.Create(ctx, &models.ReferralReward{
			ReferrerID:    referrer.UserID,
			InvitedUserID: newUserID,
			Level:         1,
			Amount:        s.cfg.Level1Reward,
		}); err != nil {
			return err
		}

		// One more hop up the chain; rewards stop at level 2.
		if referrer.ReferredBy != nil {
			if err := tx.Users.AddBalance(ctx, *referrer.ReferredBy, s.cfg.Level2Reward); err != nil {
				return err
			}
			if err := tx.Rewards.Create(ctx, &models.ReferralReward{
				ReferrerID:    *referrer.ReferredBy,
				InvitedUserID: newUserID,
				Level:         2,
				Amount:        s.cfg.Level2Reward,
			}); err != nil {
				return err
			}
		}

		logger.Log.Info("Referral applied",
			zap.Int64("new_user", newUserID),
			zap.Int64("referrer", referrer.UserID),
		)
		return nil
	})
}
