package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/encrypted69-code/upirefer/internal/logger"
	"github.com/encrypted69-code/upirefer/internal/service"
)

const notifyDedupeTTL = 24 * time.Hour

// Reconciler periodically audits the ledger for zeroed balances that lack a
// matching withdrawal record and tells the admins about them. It never fixes
// anything itself.
type Reconciler struct {
	Service  *service.Service
	Redis    *redis.Client
	Bot      *telego.Bot
	AdminIDs []int64
	Interval time.Duration
}

func NewReconciler(svc *service.Service, rdb *redis.Client, bot *telego.Bot, adminIDs []int64) *Reconciler {
	return &Reconciler{
		Service:  svc,
		Redis:    rdb,
		Bot:      bot,
		AdminIDs: adminIDs,
		Interval: 1 * time.Hour,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	logger.Log.Info("Reconciliation worker started")

	// Run once at start
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	flagged, err := r.Service.Reconcile(ctx)
	if err != nil {
		logger.Log.Error("Reconciliation check failed", zap.Error(err))
		return
	}
	if len(flagged) == 0 {
		return
	}

	logger.Log.Warn("Found users with unreconciled withdrawals", zap.Int64s("users", flagged))

	for _, userID := range flagged {
		if r.alreadyNotified(ctx, userID) {
			continue
		}
		r.notifyAdmins(ctx, userID)
	}
}

func (r *Reconciler) alreadyNotified(ctx context.Context, userID int64) bool {
	if r.Redis == nil {
		return false
	}
	key := fmt.Sprintf("reconcile_flagged_%d", userID)
	set, err := r.Redis.SetNX(ctx, key, "true", notifyDedupeTTL).Result()
	if err != nil {
		logger.Log.Warn("Redis dedupe check failed", zap.Error(err))
		return false
	}
	return !set
}

func (r *Reconciler) notifyAdmins(ctx context.Context, userID int64) {
	if r.Bot == nil {
		return
	}
	text := fmt.Sprintf("⚠️ Ledger mismatch: user %d has a zeroed balance with no matching withdrawal record. Manual reconciliation needed.", userID)
	for _, adminID := range r.AdminIDs {
		if _, err := r.Bot.SendMessage(ctx, tu.Message(tu.ID(adminID), text)); err != nil {
			logger.Log.Error("Failed to notify admin",
				zap.Int64("admin", adminID),
				zap.Error(err),
			)
		}
	}
}
