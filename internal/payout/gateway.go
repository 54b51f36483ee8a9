package payout

import (
	"context"

	"go.uber.org/zap"

	"github.com/encrypted69-code/upirefer/internal/logger"
)

// Gateway settles an approved withdrawal with an external payment provider.
type Gateway interface {
	Transfer(ctx context.Context, upiID string, amount int64) error
}

// LogGateway records the transfer intent and does nothing else. The real
// provider integration hangs off this interface; approval bookkeeping does
// not depend on it succeeding.
type LogGateway struct{}

func (LogGateway) Transfer(ctx context.Context, upiID string, amount int64) error {
	logger.Log.Info("Payout transfer requested",
		zap.String("upi_id", upiID),
		zap.Int64("amount", amount),
	)
	return nil
}
