// Package repository defines repository interfaces for data access
package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"photo-checkin/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a transaction lost a write-write race and may be retried
	ErrConflict = errors.New("write conflict")
	// ErrAlreadyApplied is returned when an attendance record's deduction was already committed
	ErrAlreadyApplied = errors.New("deduction already applied")
)

// EventRepository defines the interface for event configuration access
type EventRepository interface {
	// GetByID retrieves the timing configuration of an event
	GetByID(ctx context.Context, eventID string) (*models.EventConfig, error)
}

// AttendanceRepository defines the interface for attendance record access
type AttendanceRepository interface {
	// StampLateness writes the lateness verdict back onto an attendance record.
	// A record whose deduction is already committed is left untouched and
	// ErrAlreadyApplied is returned.
	StampLateness(ctx context.Context, recordID string, isLate bool, deduction decimal.Decimal) error
	// ListLateByPhotographer returns the most recent late check-ins of a photographer
	ListLateByPhotographer(ctx context.Context, photographerID string, limit int) ([]models.AttendanceRecord, error)
}

// LedgerRepository defines the interface for photographer ledger access
type LedgerRepository interface {
	// Get reads the current ledger of a photographer
	Get(ctx context.Context, photographerID string) (*models.PhotographerLedger, error)
	// Deduct atomically decrements the balance and increments total deductions.
	// It returns ErrNotFound when the ledger is missing, ErrConflict when the
	// transaction lost a race and ErrAlreadyApplied when d.RecordID was already deducted.
	Deduct(ctx context.Context, d models.Deduction) (*models.PhotographerLedger, error)
}

// UserRepository defines the interface for user profile access
type UserRepository interface {
	// GetByID retrieves a user profile
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
	// FindByNotificationHandle retrieves the user owning a notification handle
	FindByNotificationHandle(ctx context.Context, handle string) (*models.UserProfile, error)
	// SetNotificationHandle links a notification handle to a user
	SetNotificationHandle(ctx context.Context, userID, handle string) error
}
