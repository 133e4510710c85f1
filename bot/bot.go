package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo-checkin/internal/repository"
)

const historyLimit = 5

// Bot is the Telegram front of the check-in system
type Bot struct {
	api            *tgbotapi.BotAPI
	adminChatID    int64
	userRepo       repository.UserRepository
	ledgerRepo     repository.LedgerRepository
	attendanceRepo repository.AttendanceRepository
}

// New authorizes the Telegram bot
func New(
	token string,
	adminChatID int64,
	userRepo repository.UserRepository,
	ledgerRepo repository.LedgerRepository,
	attendanceRepo repository.AttendanceRepository,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	api.Debug = false
	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:            api,
		adminChatID:    adminChatID,
		userRepo:       userRepo,
		ledgerRepo:     ledgerRepo,
		attendanceRepo: attendanceRepo,
	}, nil
}

// StartPolling starts the update loop; it stops when ctx is done
func (b *Bot) StartPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = tgbotapi.ModeMarkdown
			msg.Text = b.handleCommand(ctx, update.Message.Chat.ID, update.Message.Command(), update.Message.CommandArguments())

			if _, err := b.api.Send(msg); err != nil {
				log.Printf("Bot send error: %v", err)
			}
		}
	}()
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) string {
	switch command {
	case "start":
		return "📸 *Photographer check-in*\n\n" +
			"*Commands:*\n" +
			"/link <photographerId> [chatId] - admin: route late check-in alerts to a chat\n" +
			"/unlink <photographerId> - admin: stop routing alerts\n" +
			"/balance - current balance\n" +
			"/lates - recent late check-ins\n" +
			"/getid - show this chat id"

	case "getid":
		return fmt.Sprintf("Chat ID: `%d`", chatID)

	case "link":
		return b.handleLink(ctx, chatID, args)

	case "unlink":
		return b.handleUnlink(ctx, chatID, args)

	case "balance":
		return b.handleBalance(ctx, chatID)

	case "lates":
		return b.handleLates(ctx, chatID)

	default:
		return "Unknown command, use /start"
	}
}

// handleLink binds a photographer to a chat. Only the admin chat may link,
// and a photographer already bound to another chat must be unlinked first.
func (b *Bot) handleLink(ctx context.Context, chatID int64, args string) string {
	if b.adminChatID == 0 || chatID != b.adminChatID {
		return "⛔ Only the admin can link chats. Send your /getid to the admin."
	}

	fields := strings.Fields(args)
	if len(fields) < 1 || len(fields) > 2 {
		return "Usage: `/link <photographerId> [chatId]`"
	}
	photographerID := fields[0]

	target := chatID
	if len(fields) == 2 {
		id, err := parseHandle(fields[1])
		if err != nil {
			return "❌ Invalid chat id"
		}
		target = id
	}
	handle := handleFor(target)

	user, err := b.userRepo.GetByID(ctx, photographerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "❌ Unknown photographer id"
		}
		log.Printf("❌ Failed to load photographer %s: %v", photographerID, err)
		return "❌ Could not link this chat, try again later"
	}
	if user.FCMToken != "" && user.FCMToken != handle {
		return fmt.Sprintf("❌ `%s` is already linked to another chat. Use /unlink first.", photographerID)
	}

	if err := b.userRepo.SetNotificationHandle(ctx, photographerID, handle); err != nil {
		log.Printf("❌ Failed to link chat %d: %v", target, err)
		return "❌ Could not link this chat, try again later"
	}
	return fmt.Sprintf("✅ Linked! Late check-in alerts for `%s` will arrive in chat `%d`.", photographerID, target)
}

func (b *Bot) handleUnlink(ctx context.Context, chatID int64, args string) string {
	if b.adminChatID == 0 || chatID != b.adminChatID {
		return "⛔ Only the admin can unlink chats."
	}

	fields := strings.Fields(args)
	if len(fields) != 1 {
		return "Usage: `/unlink <photographerId>`"
	}

	if err := b.userRepo.SetNotificationHandle(ctx, fields[0], ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "❌ Unknown photographer id"
		}
		log.Printf("❌ Failed to unlink %s: %v", fields[0], err)
		return "❌ Could not unlink, try again later"
	}
	return fmt.Sprintf("✅ Unlinked `%s`", fields[0])
}

func (b *Bot) handleBalance(ctx context.Context, chatID int64) string {
	user, err := b.userRepo.FindByNotificationHandle(ctx, handleFor(chatID))
	if err != nil {
		return "❌ Not linked. Use /link <photographerId>"
	}

	ledger, err := b.ledgerRepo.Get(ctx, user.ID)
	if err != nil {
		return "No ledger found"
	}
	return fmt.Sprintf("💰 *Balance*\nBalance: %s\nTotal deductions: %s",
		ledger.Balance.StringFixed(2), ledger.TotalDeductions.StringFixed(2))
}

func (b *Bot) handleLates(ctx context.Context, chatID int64) string {
	user, err := b.userRepo.FindByNotificationHandle(ctx, handleFor(chatID))
	if err != nil {
		return "❌ Not linked. Use /link <photographerId>"
	}

	records, err := b.attendanceRepo.ListLateByPhotographer(ctx, user.ID, historyLimit)
	if err != nil || len(records) == 0 {
		return "No late check-ins 🎉"
	}

	text := "⏰ *Late check-ins*\n\n"
	for _, r := range records {
		text += fmt.Sprintf("%v · event `%s` · -%s\n", r.CheckInTimestamp, r.EventID, r.LateDeductionApplied)
	}
	return text
}

// SendNotification sends message to admin
func (b *Bot) SendNotification(message string) {
	if b.adminChatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.adminChatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send: %v", err)
	}
}

// SendPersonalNotification sends to specific chat
func (b *Bot) SendPersonalNotification(chatID int64, message string) error {
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send to %d: %w", chatID, err)
	}
	return nil
}
