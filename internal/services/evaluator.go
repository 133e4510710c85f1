package services

import (
	"time"

	"photo-checkin/internal/models"
)

// TimeWindow is the arrival window derived from an event's configuration
type TimeWindow struct {
	EventDateTime         time.Time
	RequiredArrivalOffset time.Duration
	GracePeriod           time.Duration
}

// WindowFor builds the arrival window of an event
func WindowFor(ev *models.EventConfig) TimeWindow {
	return TimeWindow{
		EventDateTime:         ev.EventDateTime,
		RequiredArrivalOffset: time.Duration(ev.RequiredArrivalTimeOffsetMinutes) * time.Minute,
		GracePeriod:           time.Duration(ev.GracePeriodMinutes) * time.Minute,
	}
}

// RequiredArrivalTime is the instant a photographer is expected on site
func (w TimeWindow) RequiredArrivalTime() time.Time {
	return w.EventDateTime.Add(-w.RequiredArrivalOffset)
}

// GracePeriodEnd is the last instant a check-in is still on time
func (w TimeWindow) GracePeriodEnd() time.Time {
	return w.RequiredArrivalTime().Add(w.GracePeriod)
}

// Verdict is the outcome of evaluating a check-in against a window
type Verdict struct {
	IsLate   bool
	LateBy   time.Duration
	Deadline time.Time
}

// Evaluate reports whether checkIn falls after the grace period.
// A check-in exactly at the end of the grace period is on time.
func Evaluate(w TimeWindow, checkIn time.Time) Verdict {
	deadline := w.GracePeriodEnd()
	v := Verdict{Deadline: deadline}
	if checkIn.After(deadline) {
		v.IsLate = true
		v.LateBy = checkIn.Sub(deadline)
	}
	return v
}
