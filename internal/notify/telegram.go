// Package notify pushes ledger events to an admin Telegram chat. The
// notifier is best-effort: delivery failures are logged, never surfaced.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/hackerloum/mshikotap/internal/config"
	"github.com/hackerloum/mshikotap/internal/domain"
)

const sendTimeout = 10 * time.Second

type Notifier struct {
	bot    *bot.Bot
	chatID int64
}

// New builds a Notifier. Without a bot token it degrades to a no-op.
func New(cfg *config.Config) *Notifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return &Notifier{}
	}
	b, err := bot.New(cfg.TelegramBotToken)
	if err != nil {
		slog.Error("create notifier bot", "error", err)
		return &Notifier{}
	}
	return &Notifier{bot: b, chatID: cfg.TelegramChatID}
}

func (n *Notifier) send(message string) {
	if n.bot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   message,
	})
	if err != nil {
		slog.Error("send admin notification", "error", err)
	}
}

func (n *Notifier) Registration(acct *domain.Account) {
	ref := "-"
	if acct.ReferredBy != nil {
		ref = *acct.ReferredBy
	}
	n.send(fmt.Sprintf("🆕 New signup\n\nName: %s\nEmail: %s\nReferred by: %s", acct.FullName, acct.Email, ref))
}

func (n *Notifier) WithdrawalRequested(w *domain.WithdrawalRequest) {
	n.send(fmt.Sprintf("💸 Withdrawal requested\n\nRequest: %s\nAccount: %s\nAmount: $%s\nMethod: %s (%s)",
		w.ID, w.AccountID, w.Amount.StringFixed(2), w.Method.Type, w.Method.Destination))
}

func (n *Notifier) WithdrawalResolved(w *domain.WithdrawalRequest) {
	n.send(fmt.Sprintf("✅ Withdrawal %s\n\nRequest: %s\nAccount: %s\nAmount: $%s",
		w.Status, w.ID, w.AccountID, w.Amount.StringFixed(2)))
}

func (n *Notifier) ProofAwaitingReview(a *domain.TaskAssignment) {
	n.send(fmt.Sprintf("📝 Proof awaiting review\n\nAssignment: %s\nAccount: %s\nTask: %s", a.ID, a.AccountID, a.TaskID))
}
