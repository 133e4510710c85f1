package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"photo-checkin/internal/repository"
)

const lateCheckInTitle = "Late Check-In"

// BotNotifier defines the interface for push notifications
type BotNotifier interface {
	// SendNotification sends a message to the admin channel
	SendNotification(message string)
	// SendPersonalNotification delivers a message to a user's notification handle
	SendPersonalNotification(ctx context.Context, handle, title, body string) error
}

// NotificationDispatcher sends best-effort late check-in notifications
type NotificationDispatcher struct {
	userRepo    repository.UserRepository
	botNotifier BotNotifier
	timeout     time.Duration
}

// NewNotificationDispatcher creates a new notification dispatcher.
// A zero timeout leaves the caller's deadline in place.
func NewNotificationDispatcher(userRepo repository.UserRepository, botNotifier BotNotifier, timeout time.Duration) *NotificationDispatcher {
	return &NotificationDispatcher{
		userRepo:    userRepo,
		botNotifier: botNotifier,
		timeout:     timeout,
	}
}

// NotifyLateCheckIn tells a photographer about a late deduction. It never
// fails: a missing handle is skipped and delivery errors are only logged.
// It reports whether a message was delivered.
func (d *NotificationDispatcher) NotifyLateCheckIn(ctx context.Context, photographerID string, amount decimal.Decimal) bool {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.send(ctx, photographerID, amount); err != nil {
		if errors.Is(err, errNoHandle) {
			log.Printf("🔕 Photographer %s has no notification handle, skipping", photographerID)
			return false
		}
		log.Printf("❌ Error sending late check-in notification to %s: %v", photographerID, err)
		return false
	}

	log.Printf("🔔 Late check-in notification sent to %s", photographerID)
	return true
}

var errNoHandle = errors.New("no notification handle")

func (d *NotificationDispatcher) send(ctx context.Context, photographerID string, amount decimal.Decimal) error {
	user, err := d.userRepo.GetByID(ctx, photographerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNoHandle
		}
		return &Error{Kind: KindNotification, Op: "lookup user", Err: err}
	}
	if user.FCMToken == "" {
		return errNoHandle
	}

	body := fmt.Sprintf("A deduction of %s has been applied for late arrival.", amount)
	if err := d.botNotifier.SendPersonalNotification(ctx, user.FCMToken, lateCheckInTitle, body); err != nil {
		return &Error{Kind: KindNotification, Op: "send", Err: err}
	}
	return nil
}

// NotifyAdmin posts a late check-in summary to the admin channel
func (d *NotificationDispatcher) NotifyAdmin(photographerID, eventID string, amount decimal.Decimal, lateBy time.Duration) {
	message := fmt.Sprintf("⚠️ *Late check-in*\n👤 Photographer: `%s`\n📅 Event: `%s`\n⏰ Late by %d min\n💸 Deducted: %s",
		photographerID, eventID, int(lateBy.Minutes()), amount)
	d.botNotifier.SendNotification(message)
}
