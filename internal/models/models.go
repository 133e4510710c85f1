// Package models contains data structures for the application
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceType distinguishes check-in from check-out records
type AttendanceType string

const (
	CheckIn  AttendanceType = "check_in"
	CheckOut AttendanceType = "check_out"
)

// AttendanceRecord represents a photographer's check-in or check-out at an event.
//
// CheckInTimestamp keeps whatever representation the source delivered: a store-native
// types.DateTime, a time.Time, a date string or unix milliseconds. Use
// services.NormalizeInstant to turn it into a time.Time.
type AttendanceRecord struct {
	ID                   string          `json:"id"`
	EventID              string          `json:"event_id"`
	PhotographerID       string          `json:"photographer_id"`
	Type                 AttendanceType  `json:"type"`
	CheckInTimestamp     any             `json:"check_in_timestamp"`
	IsLate               bool            `json:"is_late"`
	LateDeductionApplied decimal.Decimal `json:"late_deduction_applied"`
	DeductionCommitted   bool            `json:"deduction_committed"`
}

// MaxWindowMinutes bounds an event's arrival offset and grace period (one leap year)
const MaxWindowMinutes = 366 * 24 * 60

// EventConfig holds the timing and penalty settings of a scheduled event
type EventConfig struct {
	ID                               string
	EventDateTime                    time.Time
	RequiredArrivalTimeOffsetMinutes int
	GracePeriodMinutes               int
	LateDeductionAmount              decimal.Decimal
}

// PhotographerLedger is the per-photographer balance record
type PhotographerLedger struct {
	PhotographerID  string
	Balance         decimal.Decimal
	TotalDeductions decimal.Decimal
}

// UserProfile represents the notification settings of a user
type UserProfile struct {
	ID       string
	FCMToken string // opaque notification-channel handle; empty when the user has none
}

// Deduction describes a single ledger decrement.
// RecordID, when set, is the attendance record the deduction belongs to and
// makes the store refuse a second deduction for the same record.
type Deduction struct {
	PhotographerID string
	Amount         decimal.Decimal
	RecordID       string
}
