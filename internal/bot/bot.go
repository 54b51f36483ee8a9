package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"github.com/encrypted69-code/upirefer/internal/logger"
	"github.com/encrypted69-code/upirefer/internal/service"
)

type Bot struct {
	Instance *telego.Bot
	Service  *service.Service
	Username string
}

func NewBot(token, username string, svc *service.Service) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance: tgBot,
		Service:  svc,
		Username: username,
	}, nil
}

func (b *Bot) Start() {
	updates, _ := b.Instance.UpdatesViaLongPolling(context.Background(), nil)

	handler, _ := th.NewBotHandler(b.Instance, updates)

	// /start [referral_code]
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		userID := message.From.ID

		if _, err := b.Service.EnsureUser(ctx.Context(), userID); err != nil {
			return b.replySystemError(ctx, message.Chat.ID, "ensure user", err)
		}
		if code := commandArg(message.Text); code != "" {
			if err := b.Service.ApplyReferral(ctx.Context(), userID, code); err != nil {
				// Registration already succeeded; log and carry on.
				logger.Log.Error("Failed to apply referral", zap.Int64("user", userID), zap.Error(err))
			}
		}

		return b.reply(ctx, message.Chat.ID,
			fmt.Sprintf("Welcome! Your referral link:\n%s", b.referralLink(userID)))
	}, th.CommandEqual("start"))

	// /refer
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		return b.reply(ctx, message.Chat.ID,
			fmt.Sprintf("Your referral link:\n%s", b.referralLink(message.From.ID)))
	}, th.CommandEqual("refer"))

	// /balance
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		balance, err := b.Service.GetBalance(ctx.Context(), message.From.ID)
		if err != nil {
			return b.replySystemError(ctx, message.Chat.ID, "get balance", err)
		}
		return b.reply(ctx, message.Chat.ID, fmt.Sprintf("Your balance: ₹%d", balance))
	}, th.CommandEqual("balance"))

	// /upi <handle>
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		handle := commandArg(message.Text)
		if handle == "" {
			return b.reply(ctx, message.Chat.ID, "Usage: /upi your_upi_id@bank")
		}
		if err := b.Service.SetPayoutHandle(ctx.Context(), message.From.ID, handle); err != nil {
			if errors.Is(err, service.ErrEmptyPayoutHandle) {
				return b.reply(ctx, message.Chat.ID, "Usage: /upi your_upi_id@bank")
			}
			return b.replySystemError(ctx, message.Chat.ID, "set upi", err)
		}
		return b.reply(ctx, message.Chat.ID, fmt.Sprintf("UPI ID set to: %s", handle))
	}, th.CommandEqual("upi"))

	// /withdraw
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		receipt, err := b.Service.RequestWithdrawal(ctx.Context(), message.From.ID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrBelowMinimum):
				return b.reply(ctx, message.Chat.ID,
					fmt.Sprintf("Minimum withdrawal is ₹%d.", b.Service.MinWithdraw()))
			case errors.Is(err, service.ErrNoPayoutHandle):
				return b.reply(ctx, message.Chat.ID, "Set your UPI ID first using /upi command.")
			case errors.Is(err, service.ErrConflict):
				return b.reply(ctx, message.Chat.ID, "Another withdrawal is in flight, please try again.")
			}
			return b.replySystemError(ctx, message.Chat.ID, "request withdrawal", err)
		}
		return b.reply(ctx, message.Chat.ID,
			fmt.Sprintf("Withdrawal request of ₹%d submitted for %s. Await admin approval.\nRequest ID: %s",
				receipt.Amount, receipt.UPIID, receipt.ID))
	}, th.CommandEqual("withdraw"))

	// /info
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		profile, err := b.Service.GetProfile(ctx.Context(), message.From.ID)
		if err != nil {
			return b.replySystemError(ctx, message.Chat.ID, "get profile", err)
		}
		return b.reply(ctx, message.Chat.ID, formatProfile(profile))
	}, th.CommandEqual("info"))

	// /leaderboard
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		entries, err := b.Service.TopReferrers(ctx.Context(), service.DefaultLeaderboardLimit)
		if err != nil {
			return b.replySystemError(ctx, message.Chat.ID, "leaderboard", err)
		}
		return b.reply(ctx, message.Chat.ID, formatLeaderboard(entries))
	}, th.CommandEqual("leaderboard"))

	// /admin_stats (admin only)
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		stats, err := b.Service.AdminStats(ctx.Context(), message.From.ID)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				return b.reply(ctx, message.Chat.ID, "Unauthorized.")
			}
			return b.replySystemError(ctx, message.Chat.ID, "admin stats", err)
		}
		return b.reply(ctx, message.Chat.ID, formatStats(stats))
	}, th.CommandEqual("admin_stats"))

	// /approve_withdrawal <id> (admin only)
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		arg := commandArg(message.Text)
		if arg == "" {
			return b.reply(ctx, message.Chat.ID, "Usage: /approve_withdrawal withdrawal_id")
		}
		withdrawalID, err := uuid.Parse(arg)
		if err != nil {
			return b.reply(ctx, message.Chat.ID, "No such pending withdrawal.")
		}
		if _, err := b.Service.ApproveWithdrawal(ctx.Context(), message.From.ID, withdrawalID); err != nil {
			switch {
			case errors.Is(err, service.ErrUnauthorized):
				return b.reply(ctx, message.Chat.ID, "Unauthorized.")
			case errors.Is(err, service.ErrWithdrawalNotPending):
				return b.reply(ctx, message.Chat.ID, "No such pending withdrawal.")
			}
			return b.replySystemError(ctx, message.Chat.ID, "approve withdrawal", err)
		}
		return b.reply(ctx, message.Chat.ID,
			fmt.Sprintf("Withdrawal %s approved and marked as paid.", withdrawalID))
	}, th.CommandEqual("approve_withdrawal"))

	// /help
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		return b.reply(ctx, update.Message.Chat.ID, helpText)
	}, th.CommandEqual("help"))

	handler.Start()
}

const helpText = "/start [referral_code] - Start bot\n" +
	"/refer - Get your referral link\n" +
	"/balance - Check your balance\n" +
	"/upi your_upi_id@bank - Set your UPI ID\n" +
	"/withdraw - Withdraw your earnings\n" +
	"/info - Show your info\n" +
	"/leaderboard - Top referrers\n" +
	"/help - Show this message\n" +
	"Admin commands: /admin_stats, /approve_withdrawal"

func (b *Bot) referralLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", b.Username, userID)
}

func (b *Bot) reply(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(chatID), text))
	if err != nil {
		logger.Log.Error("Failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
	return nil
}

// replySystemError hides store detail from the user and keeps it in the logs.
func (b *Bot) replySystemError(ctx *th.Context, chatID int64, op string, err error) error {
	logger.Log.Error("Command failed", zap.String("op", op), zap.Error(err))
	return b.reply(ctx, chatID, "Something went wrong, please try again later.")
}

// commandArg extracts the first argument after the command itself.
func commandArg(text string) string {
	parts := strings.Fields(text)
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

func formatProfile(p *service.Profile) string {
	upi := p.UPIID
	if upi == "" {
		upi = "Not set"
	}
	return fmt.Sprintf("Your balance: ₹%d\nYour UPI ID: %s\nReferred users: %d\nTotal earned: ₹%d",
		p.Balance, upi, p.ReferralCount, p.TotalEarned)
}

func formatLeaderboard(entries []service.LeaderboardEntry) string {
	var sb strings.Builder
	sb.WriteString("🏆 Top Referrers:\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %d - ₹%d\n", i+1, e.UserID, e.Balance)
	}
	return sb.String()
}

func formatStats(s *service.Stats) string {
	return fmt.Sprintf("Total users: %d\nTotal balance in system: ₹%d\nPending withdrawals: %d",
		s.TotalUsers, s.TotalBalance, s.PendingWithdrawals)
}
