package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/encrypted69-code/upirefer/internal/logger"
	"github.com/encrypted69-code/upirefer/internal/models"
	"github.com/encrypted69-code/upirefer/internal/storage"
)

// WithdrawalReceipt is returned to the caller for confirmation messaging.
type WithdrawalReceipt struct {
	ID     uuid.UUID
	Amount int64
	UPIID  string
}

// RequestWithdrawal snapshots the user's full balance into a new pending
// withdrawal and zeros the balance, both inside one transaction. The zeroing
// is a compare-and-set against the snapshot, so of two simultaneous requests
// exactly one wins; the loser rolls back its record and gets ErrConflict.
func (s *Service) RequestWithdrawal(ctx context.Context, userID int64) (*WithdrawalReceipt, error) {
	user, err := s.EnsureUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Balance < s.cfg.MinWithdraw {
		return nil, ErrBelowMinimum
	}
	if user.UPIID == "" {
		return nil, ErrNoPayoutHandle
	}

	w := &models.Withdrawal{
		ID:     uuid.New(),
		UserID: userID,
		Amount: user.Balance,
		UPIID:  user.UPIID,
		Status: models.WithdrawalStatusPending,
	}

	err = s.store.Transaction(ctx, func(tx *storage.Storage) error {
		// Record first, then zero: a torn write leaves an extra record, never
		// a silently vanished balance, and the reconciliation pass catches it.
		if err := tx.Withdrawals.Create(ctx, w); err != nil {
			return err
		}
		debited, err := tx.Users.DebitAll(ctx, userID, user.Balance)
		if err != nil {
			return err
		}
		if !debited {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Withdrawal requested",
		zap.Int64("user", userID),
		zap.String("withdrawal", w.ID.String()),
		zap.Int64("amount", w.Amount),
	)
	return &WithdrawalReceipt{ID: w.ID, Amount: w.Amount, UPIID: w.UPIID}, nil
}

// ApproveWithdrawal moves a pending withdrawal to approved. Admin-only; the
// transition happens at most once. The payout gateway is notified after the
// bookkeeping commits, and a gateway failure does not undo the approval.
func (s *Service) ApproveWithdrawal(ctx context.Context, actorID int64, withdrawalID uuid.UUID) (*models.Withdrawal, error) {
	if !s.IsAdmin(actorID) {
		return nil, ErrUnauthorized
	}

	approved, err := s.store.Withdrawals.Approve(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, ErrWithdrawalNotPending
	}

	w, err := s.store.Withdrawals.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.Transfer(ctx, w.UPIID, w.Amount); err != nil {
		logger.Log.Error("Payout gateway transfer failed",
			zap.String("withdrawal", withdrawalID.String()),
			zap.Error(err),
		)
	}

	logger.Log.Info("Withdrawal approved",
		zap.String("withdrawal", withdrawalID.String()),
		zap.Int64("actor", actorID),
	)
	return w, nil
}

// Stats is the admin aggregate view.
type Stats struct {
	TotalUsers         int64
	TotalBalance       int64
	PendingWithdrawals int64
}

func (s *Service) AdminStats(ctx context.Context, actorID int64) (*Stats, error) {
	if !s.IsAdmin(actorID) {
		return nil, ErrUnauthorized
	}

	users, err := s.store.Users.Count(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := s.store.Users.SumBalances(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.Withdrawals.CountByStatus(ctx, models.WithdrawalStatusPending)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:         users,
		TotalBalance:       balance,
		PendingWithdrawals: pending,
	}, nil
}

// Reconcile reports users whose zeroed balances have no matching withdrawal
// records. It mutates nothing; flagged users need manual follow-up.
func (s *Service) Reconcile(ctx context.Context) ([]int64, error) {
	return s.store.UnreconciledUserIDs(ctx)
}
