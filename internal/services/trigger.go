package services

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"photo-checkin/internal/models"
)

// Trigger is the invocation boundary for newly created attendance records.
// Every error is logged here and never propagated to the caller.
type Trigger struct {
	processor CheckInProcessor

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewTrigger creates a new trigger around a processor
func NewTrigger(processor CheckInProcessor) *Trigger {
	return &Trigger{processor: processor}
}

// Handle processes one record synchronously and logs the outcome
func (t *Trigger) Handle(ctx context.Context, rec *models.AttendanceRecord) {
	invocation := uuid.NewString()

	res, err := t.processor.Process(ctx, rec)
	switch {
	case err == nil:
		log.Printf("[%s] record %s finished in state %s", invocation, res.RecordID, res.State())
	case IsIgnored(err):
		log.Printf("[%s] Attendance record %s is not a check-in, skipping", invocation, res.RecordID)
	default:
		log.Printf("❌ [%s] Error processing check-in %s (state %s): %v", invocation, res.RecordID, res.State(), err)
	}
}

// Dispatch processes a record in the background. Once Wait has been called,
// records are processed inline on the caller's goroutine.
func (t *Trigger) Dispatch(rec models.AttendanceRecord) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.Handle(context.Background(), &rec)
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		t.Handle(context.Background(), &rec)
	}()
}

// Wait stops background dispatching and blocks until every dispatched
// invocation has returned
func (t *Trigger) Wait() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.wg.Wait()
}
