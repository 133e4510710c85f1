package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"

	"photo-checkin/internal/models"
	"photo-checkin/internal/repository"
)

const (
	defaultLedgerMaxTries      = 5
	defaultLedgerRetryInterval = 50 * time.Millisecond
)

// LedgerUpdater applies balance deductions against the photographer ledger
type LedgerUpdater struct {
	repo          repository.LedgerRepository
	maxTries      uint
	retryInterval time.Duration
}

// LedgerOption configures a LedgerUpdater
type LedgerOption func(*LedgerUpdater)

// WithRetryPolicy sets how many times a conflicting transaction is attempted
// and the initial back-off between attempts
func WithRetryPolicy(maxTries uint, interval time.Duration) LedgerOption {
	return func(u *LedgerUpdater) {
		if maxTries > 0 {
			u.maxTries = maxTries
		}
		if interval > 0 {
			u.retryInterval = interval
		}
	}
}

// NewLedgerUpdater creates a new ledger updater
func NewLedgerUpdater(repo repository.LedgerRepository, opts ...LedgerOption) *LedgerUpdater {
	u := &LedgerUpdater{
		repo:          repo,
		maxTries:      defaultLedgerMaxTries,
		retryInterval: defaultLedgerRetryInterval,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ApplyDeduction decrements a photographer's balance by amount and adds it to
// total deductions in one transaction. The operation is additive: calling it
// twice deducts twice.
func (u *LedgerUpdater) ApplyDeduction(ctx context.Context, photographerID string, amount decimal.Decimal) (*models.PhotographerLedger, error) {
	return u.apply(ctx, models.Deduction{PhotographerID: photographerID, Amount: amount})
}

// ApplyRecordDeduction is ApplyDeduction keyed on an attendance record; a
// record whose deduction already committed yields repository.ErrAlreadyApplied.
func (u *LedgerUpdater) ApplyRecordDeduction(ctx context.Context, recordID, photographerID string, amount decimal.Decimal) (*models.PhotographerLedger, error) {
	return u.apply(ctx, models.Deduction{PhotographerID: photographerID, Amount: amount, RecordID: recordID})
}

func (u *LedgerUpdater) apply(ctx context.Context, d models.Deduction) (*models.PhotographerLedger, error) {
	const op = "apply deduction"

	if d.Amount.IsNegative() {
		return nil, errValidation(op, fmt.Errorf("negative amount %s", d.Amount))
	}

	attempt := 0
	deduct := func() (*models.PhotographerLedger, error) {
		attempt++
		ledger, err := u.repo.Deduct(ctx, d)
		switch {
		case err == nil:
			return ledger, nil
		case errors.Is(err, repository.ErrConflict):
			log.Printf("⚠️ Ledger conflict for %s (attempt %d/%d), retrying", d.PhotographerID, attempt, u.maxTries)
			return nil, err
		default:
			return nil, backoff.Permanent(err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.retryInterval
	b.MaxInterval = 20 * u.retryInterval

	ledger, err := backoff.Retry(ctx, deduct, backoff.WithBackOff(b), backoff.WithMaxTries(u.maxTries))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, errNotFound(op, err)
		case errors.Is(err, repository.ErrAlreadyApplied):
			return nil, err
		default:
			return nil, errTransient(op, err)
		}
	}
	return ledger, nil
}
