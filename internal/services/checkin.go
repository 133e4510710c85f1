package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"photo-checkin/internal/models"
	"photo-checkin/internal/repository"
)

// State is a step of check-in processing
type State string

const (
	StateReceived       State = "received"
	StateValidated      State = "validated"
	StateEvaluated      State = "evaluated"
	StateLedgerUpdating State = "ledger_updating"
	StateNotifying      State = "notifying"
	StateDone           State = "done"
	StateAborted        State = "aborted"
	StateFailed         State = "failed"
)

// Result describes how a single check-in was processed
type Result struct {
	RecordID  string
	Trail     []State
	Late      bool
	Deduction decimal.Decimal
	Ledger    *models.PhotographerLedger
	Notified  bool
}

// State returns the last state reached
func (r *Result) State() State {
	if len(r.Trail) == 0 {
		return ""
	}
	return r.Trail[len(r.Trail)-1]
}

func (r *Result) advance(s State) { r.Trail = append(r.Trail, s) }

// CheckInProcessor defines the interface for check-in processing
type CheckInProcessor interface {
	Process(ctx context.Context, rec *models.AttendanceRecord) (*Result, error)
}

// CheckInService decides lateness of check-ins and applies late deductions
type CheckInService struct {
	eventRepo      repository.EventRepository
	attendanceRepo repository.AttendanceRepository
	ledger         *LedgerUpdater
	notifier       *NotificationDispatcher
	stampOnTime    bool
}

// NewCheckInService creates a new check-in service.
// With stampOnTime set, on-time check-ins are written back as is_late=false.
func NewCheckInService(
	eventRepo repository.EventRepository,
	attendanceRepo repository.AttendanceRepository,
	ledger *LedgerUpdater,
	notifier *NotificationDispatcher,
	stampOnTime bool,
) *CheckInService {
	return &CheckInService{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		ledger:         ledger,
		notifier:       notifier,
		stampOnTime:    stampOnTime,
	}
}

var errNotCheckIn = errors.New("record is not a check-in")

// Process runs one attendance record through validation, evaluation and,
// for late check-ins, the stamp, deduction and notification steps.
// The returned Result is never nil.
func (s *CheckInService) Process(ctx context.Context, rec *models.AttendanceRecord) (*Result, error) {
	res := &Result{}
	res.advance(StateReceived)
	if rec == nil {
		res.advance(StateAborted)
		return res, errValidation("validate", errors.New("no attendance data"))
	}
	res.RecordID = rec.ID

	checkIn, err := validateCheckIn(rec)
	if err != nil {
		res.advance(StateAborted)
		return res, err
	}
	res.advance(StateValidated)

	event, err := s.eventRepo.GetByID(ctx, rec.EventID)
	if err != nil {
		res.advance(StateAborted)
		if errors.Is(err, repository.ErrNotFound) {
			return res, errNotFound("load event", err)
		}
		return res, errTransient("load event", err)
	}
	if err := validateEvent(event); err != nil {
		res.advance(StateAborted)
		return res, err
	}

	verdict := Evaluate(WindowFor(event), checkIn)
	res.advance(StateEvaluated)
	res.Late = verdict.IsLate

	if !verdict.IsLate {
		if s.stampOnTime {
			err := s.attendanceRepo.StampLateness(ctx, rec.ID, false, decimal.Zero)
			switch {
			case errors.Is(err, repository.ErrAlreadyApplied):
				log.Printf("ℹ️ Record %s already settled, leaving it unchanged", rec.ID)
				res.advance(StateDone)
				return res, nil
			case err != nil:
				log.Printf("⚠️ Failed to stamp on-time check-in %s: %v", rec.ID, err)
			}
		}
		log.Printf("✅ Photographer %s checked in on time for event %s", rec.PhotographerID, rec.EventID)
		res.advance(StateDone)
		return res, nil
	}

	amount := event.LateDeductionAmount
	res.Deduction = amount
	res.advance(StateLedgerUpdating)
	log.Printf("⏰ Photographer %s checked in %s late for event %s",
		rec.PhotographerID, verdict.LateBy.Round(time.Second), rec.EventID)

	// The stamp is committed before the ledger transaction. A crash in between
	// leaves a late record with deduction_committed=false for reconciliation.
	if err := s.attendanceRepo.StampLateness(ctx, rec.ID, true, amount); err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			log.Printf("ℹ️ Record %s already settled, leaving it unchanged", rec.ID)
			res.advance(StateDone)
			return res, nil
		}
		res.advance(StateFailed)
		if errors.Is(err, repository.ErrNotFound) {
			return res, errNotFound("stamp record", err)
		}
		return res, errTransient("stamp record", err)
	}

	ledger, err := s.ledger.ApplyRecordDeduction(ctx, rec.ID, rec.PhotographerID, amount)
	switch {
	case errors.Is(err, repository.ErrAlreadyApplied):
		log.Printf("ℹ️ Deduction for record %s already applied, skipping", rec.ID)
		res.advance(StateDone)
		return res, nil
	case KindOf(err) == KindNotFound:
		// Record stays stamped late with the nominal amount; no deduction, no notification.
		res.advance(StateDone)
		return res, err
	case err != nil:
		res.advance(StateFailed)
		return res, err
	}
	res.Ledger = ledger

	res.advance(StateNotifying)
	res.Notified = s.notifier.NotifyLateCheckIn(ctx, rec.PhotographerID, amount)
	s.notifier.NotifyAdmin(rec.PhotographerID, rec.EventID, amount, verdict.LateBy)
	res.advance(StateDone)
	return res, nil
}

// validateCheckIn enforces the Received -> Validated transition and returns
// the normalized check-in instant
func validateCheckIn(rec *models.AttendanceRecord) (time.Time, error) {
	if rec.Type != models.CheckIn {
		return time.Time{}, errValidation("validate", fmt.Errorf("%w: type %q", errNotCheckIn, rec.Type))
	}

	var checkIn time.Time
	err := validation.ValidateStruct(rec,
		validation.Field(&rec.EventID, validation.Required),
		validation.Field(&rec.PhotographerID, validation.Required),
		validation.Field(&rec.CheckInTimestamp, validation.By(func(v interface{}) error {
			t, err := NormalizeInstant(v)
			if err != nil {
				return err
			}
			checkIn = t
			return nil
		})),
	)
	if err != nil {
		return time.Time{}, errValidation("validate", err)
	}
	return checkIn, nil
}

func validateEvent(ev *models.EventConfig) error {
	err := validation.ValidateStruct(ev,
		validation.Field(&ev.EventDateTime, validation.Required),
		validation.Field(&ev.RequiredArrivalTimeOffsetMinutes, validation.Min(0), validation.Max(models.MaxWindowMinutes)),
		validation.Field(&ev.GracePeriodMinutes, validation.Min(0), validation.Max(models.MaxWindowMinutes)),
		validation.Field(&ev.LateDeductionAmount, validation.By(func(v interface{}) error {
			if amount, ok := v.(decimal.Decimal); ok && amount.IsNegative() {
				return errors.New("must not be negative")
			}
			return nil
		})),
	)
	if err != nil {
		return errValidation("validate event", fmt.Errorf("event %s: %w", ev.ID, err))
	}
	return nil
}

// IsIgnored reports whether err only means the record was not a check-in
func IsIgnored(err error) bool {
	return errors.Is(err, errNotCheckIn)
}
