// Package repository provides embedded PocketBase implementations
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"photo-checkin/internal/models"
)

// Collection names
const (
	CollectionEvents        = "events"
	CollectionPhotographers = "photographers_data"
	CollectionAttendance    = "attendance_records"
	CollectionUsers         = "users"
)

// mapStoreError translates PocketBase/SQLite errors into repository sentinels
func mapStoreError(err error) error {
	if err == nil || errors.Is(err, ErrConflict) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// PocketBaseEventRepository implements EventRepository
type PocketBaseEventRepository struct {
	app core.App
}

// NewPocketBaseEventRepository creates repository
func NewPocketBaseEventRepository(app core.App) *PocketBaseEventRepository {
	return &PocketBaseEventRepository{app: app}
}

func (r *PocketBaseEventRepository) GetByID(ctx context.Context, eventID string) (*models.EventConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := r.app.FindRecordById(CollectionEvents, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, mapStoreError(err))
	}

	return &models.EventConfig{
		ID:                               rec.Id,
		EventDateTime:                    rec.GetDateTime("event_date_time").Time(),
		RequiredArrivalTimeOffsetMinutes: rec.GetInt("required_arrival_time_offset_minutes"),
		GracePeriodMinutes:               rec.GetInt("grace_period_minutes"),
		LateDeductionAmount:              decimal.NewFromFloat(rec.GetFloat("late_deduction_amount")),
	}, nil
}

// PocketBaseAttendanceRepository implements AttendanceRepository
type PocketBaseAttendanceRepository struct {
	app core.App
}

func NewPocketBaseAttendanceRepository(app core.App) *PocketBaseAttendanceRepository {
	return &PocketBaseAttendanceRepository{app: app}
}

func (r *PocketBaseAttendanceRepository) StampLateness(ctx context.Context, recordID string, isLate bool, deduction decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// A settled record keeps the verdict and amount that were actually deducted.
	err := r.app.RunInTransaction(func(txApp core.App) error {
		rec, err := txApp.FindRecordById(CollectionAttendance, recordID)
		if err != nil {
			return fmt.Errorf("attendance record %s: %w", recordID, mapStoreError(err))
		}
		if rec.GetBool("deduction_committed") {
			return ErrAlreadyApplied
		}

		rec.Set("is_late", isLate)
		rec.Set("late_deduction_applied", deduction.InexactFloat64())

		if err := txApp.SaveNoValidate(rec); err != nil {
			return fmt.Errorf("failed to stamp attendance record %s: %w", recordID, mapStoreError(err))
		}
		return nil
	})
	return mapStoreError(err)
}

func (r *PocketBaseAttendanceRepository) ListLateByPhotographer(ctx context.Context, photographerID string, limit int) ([]models.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := r.app.FindRecordsByFilter(
		CollectionAttendance,
		"photographer_id = {:pid} && is_late = true",
		"-check_in_timestamp",
		limit,
		0,
		dbx.Params{"pid": photographerID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list late check-ins: %w", mapStoreError(err))
	}

	out := make([]models.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, AttendanceFromRecord(rec))
	}
	return out, nil
}

// AttendanceFromRecord converts a stored attendance record into the domain model.
// The check-in timestamp is passed through in its store-native form.
func AttendanceFromRecord(rec *core.Record) models.AttendanceRecord {
	var checkIn any
	if dt := rec.GetDateTime("check_in_timestamp"); !dt.IsZero() {
		checkIn = dt
	}

	return models.AttendanceRecord{
		ID:                   rec.Id,
		EventID:              rec.GetString("event_id"),
		PhotographerID:       rec.GetString("photographer_id"),
		Type:                 models.AttendanceType(rec.GetString("type")),
		CheckInTimestamp:     checkIn,
		IsLate:               rec.GetBool("is_late"),
		LateDeductionApplied: decimal.NewFromFloat(rec.GetFloat("late_deduction_applied")),
		DeductionCommitted:   rec.GetBool("deduction_committed"),
	}
}

// PocketBaseLedgerRepository implements LedgerRepository
type PocketBaseLedgerRepository struct {
	app core.App
}

func NewPocketBaseLedgerRepository(app core.App) *PocketBaseLedgerRepository {
	return &PocketBaseLedgerRepository{app: app}
}

func (r *PocketBaseLedgerRepository) Get(ctx context.Context, photographerID string) (*models.PhotographerLedger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := r.app.FindRecordById(CollectionPhotographers, photographerID)
	if err != nil {
		return nil, fmt.Errorf("photographer %s: %w", photographerID, mapStoreError(err))
	}
	return ledgerFromRecord(rec), nil
}

// Deduct runs the read-modify-write inside a single store transaction.
// SQLite serializes writers, so a concurrent deduction either waits or fails
// with ErrConflict and is re-read by the caller's retry.
func (r *PocketBaseLedgerRepository) Deduct(ctx context.Context, d models.Deduction) (*models.PhotographerLedger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *models.PhotographerLedger
	err := r.app.RunInTransaction(func(txApp core.App) error {
		rec, err := txApp.FindRecordById(CollectionPhotographers, d.PhotographerID)
		if err != nil {
			return fmt.Errorf("photographer %s: %w", d.PhotographerID, mapStoreError(err))
		}

		if d.RecordID != "" {
			att, err := txApp.FindRecordById(CollectionAttendance, d.RecordID)
			if err != nil {
				return fmt.Errorf("attendance record %s: %w", d.RecordID, mapStoreError(err))
			}
			if att.GetBool("deduction_committed") {
				return ErrAlreadyApplied
			}
			att.Set("deduction_committed", true)
			att.Set("is_late", true)
			att.Set("late_deduction_applied", d.Amount.InexactFloat64())
			if err := txApp.SaveNoValidate(att); err != nil {
				return mapStoreError(err)
			}
		}

		current := ledgerFromRecord(rec)
		balance := current.Balance.Sub(d.Amount)
		total := current.TotalDeductions.Add(d.Amount)

		rec.Set("balance", balance.InexactFloat64())
		rec.Set("total_deductions", total.InexactFloat64())
		if err := txApp.SaveNoValidate(rec); err != nil {
			return mapStoreError(err)
		}

		result = &models.PhotographerLedger{
			PhotographerID:  d.PhotographerID,
			Balance:         balance,
			TotalDeductions: total,
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	log.Printf("💸 Ledger %s: -%s (balance=%s, total_deductions=%s)",
		d.PhotographerID, d.Amount, result.Balance, result.TotalDeductions)
	return result, nil
}

func ledgerFromRecord(rec *core.Record) *models.PhotographerLedger {
	return &models.PhotographerLedger{
		PhotographerID:  rec.Id,
		Balance:         decimal.NewFromFloat(rec.GetFloat("balance")),
		TotalDeductions: decimal.NewFromFloat(rec.GetFloat("total_deductions")),
	}
}

// PocketBaseUserRepository implements UserRepository
type PocketBaseUserRepository struct {
	app core.App
}

func NewPocketBaseUserRepository(app core.App) *PocketBaseUserRepository {
	return &PocketBaseUserRepository{app: app}
}

func (r *PocketBaseUserRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := r.app.FindRecordById(CollectionUsers, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, mapStoreError(err))
	}
	return &models.UserProfile{ID: rec.Id, FCMToken: rec.GetString("fcm_token")}, nil
}

func (r *PocketBaseUserRepository) FindByNotificationHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := r.app.FindFirstRecordByData(CollectionUsers, "fcm_token", handle)
	if err != nil {
		return nil, fmt.Errorf("user with handle %s: %w", handle, mapStoreError(err))
	}
	return &models.UserProfile{ID: rec.Id, FCMToken: rec.GetString("fcm_token")}, nil
}

func (r *PocketBaseUserRepository) SetNotificationHandle(ctx context.Context, userID, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec, err := r.app.FindRecordById(CollectionUsers, userID)
	if err != nil {
		return fmt.Errorf("user %s: %w", userID, mapStoreError(err))
	}

	rec.Set("fcm_token", handle)
	if err := r.app.SaveNoValidate(rec); err != nil {
		return fmt.Errorf("failed to link handle for user %s: %w", userID, mapStoreError(err))
	}
	return nil
}
