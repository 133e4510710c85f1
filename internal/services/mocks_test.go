package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"photo-checkin/internal/models"
	"photo-checkin/internal/repository"
)

type mockEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.EventConfig
	calls  int
	err    error
}

func (m *mockEventRepo) GetByID(ctx context.Context, eventID string) (*models.EventConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

type stamp struct {
	recordID  string
	isLate    bool
	deduction decimal.Decimal
}

type mockAttendanceRepo struct {
	mu        sync.Mutex
	stamps    []stamp
	err       error
	committed func(recordID string) bool
}

func (m *mockAttendanceRepo) StampLateness(ctx context.Context, recordID string, isLate bool, deduction decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.committed != nil && m.committed(recordID) {
		return repository.ErrAlreadyApplied
	}
	m.stamps = append(m.stamps, stamp{recordID: recordID, isLate: isLate, deduction: deduction})
	return nil
}

func (m *mockAttendanceRepo) ListLateByPhotographer(ctx context.Context, photographerID string, limit int) ([]models.AttendanceRecord, error) {
	return nil, nil
}

type ledgerRow struct {
	balance decimal.Decimal
	total   decimal.Decimal
	version int
}

// mockLedgerRepo is an optimistic store: a deduction reads a snapshot, yields,
// and only commits if nobody else wrote the row in between.
type mockLedgerRepo struct {
	mu            sync.Mutex
	rows          map[string]*ledgerRow
	committed     map[string]bool
	deductCalls   int
	conflictsLeft int
	failWith      error
	yield         func()
}

func newMockLedgerRepo(balances map[string]int64) *mockLedgerRepo {
	m := &mockLedgerRepo{rows: map[string]*ledgerRow{}, committed: map[string]bool{}}
	for id, b := range balances {
		m.rows[id] = &ledgerRow{balance: decimal.NewFromInt(b), total: decimal.Zero}
	}
	return m
}

func (m *mockLedgerRepo) Get(ctx context.Context, photographerID string) (*models.PhotographerLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[photographerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.PhotographerLedger{PhotographerID: photographerID, Balance: row.balance, TotalDeductions: row.total}, nil
}

func (m *mockLedgerRepo) Deduct(ctx context.Context, d models.Deduction) (*models.PhotographerLedger, error) {
	m.mu.Lock()
	m.deductCalls++
	if m.failWith != nil {
		m.mu.Unlock()
		return nil, m.failWith
	}
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		m.mu.Unlock()
		return nil, repository.ErrConflict
	}
	row, ok := m.rows[d.PhotographerID]
	if !ok {
		m.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if d.RecordID != "" && m.committed[d.RecordID] {
		m.mu.Unlock()
		return nil, repository.ErrAlreadyApplied
	}
	snapshot := *row
	m.mu.Unlock()

	if m.yield != nil {
		m.yield()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if row.version != snapshot.version {
		return nil, repository.ErrConflict
	}
	row.balance = snapshot.balance.Sub(d.Amount)
	row.total = snapshot.total.Add(d.Amount)
	row.version++
	if d.RecordID != "" {
		m.committed[d.RecordID] = true
	}
	return &models.PhotographerLedger{PhotographerID: d.PhotographerID, Balance: row.balance, TotalDeductions: row.total}, nil
}

func (m *mockLedgerRepo) isCommitted(recordID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed[recordID]
}

func (m *mockLedgerRepo) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		n += row.version
	}
	return n
}

type mockUserRepo struct {
	users map[string]*models.UserProfile
	err   error
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) FindByNotificationHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	for _, u := range m.users {
		if u.FCMToken == handle {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) SetNotificationHandle(ctx context.Context, userID, handle string) error {
	return errors.New("not supported")
}

type sentMessage struct {
	handle string
	title  string
	body   string
}

type mockNotifier struct {
	mu            sync.Mutex
	sent          []sentMessage
	adminMessages []string
	attempts      int
	err           error
}

func (m *mockNotifier) SendNotification(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminMessages = append(m.adminMessages, message)
}

func (m *mockNotifier) SendPersonalNotification(ctx context.Context, handle, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{handle: handle, title: title, body: body})
	return nil
}

// Ensure mocks implement the interfaces
var (
	_ repository.EventRepository      = (*mockEventRepo)(nil)
	_ repository.AttendanceRepository = (*mockAttendanceRepo)(nil)
	_ repository.LedgerRepository     = (*mockLedgerRepo)(nil)
	_ repository.UserRepository       = (*mockUserRepo)(nil)
	_ BotNotifier                     = (*mockNotifier)(nil)
)

// fixture wires a CheckInService over mocks
type fixture struct {
	events     *mockEventRepo
	attendance *mockAttendanceRepo
	ledger     *mockLedgerRepo
	users      *mockUserRepo
	notifier   *mockNotifier
	service    *CheckInService
}

var eventStart = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newFixture(stampOnTime bool) *fixture {
	f := &fixture{
		events: &mockEventRepo{events: map[string]*models.EventConfig{
			"event0000000001": {
				ID:                               "event0000000001",
				EventDateTime:                    eventStart,
				RequiredArrivalTimeOffsetMinutes: 30,
				GracePeriodMinutes:               10,
				LateDeductionAmount:              decimal.NewFromInt(50),
			},
		}},
		attendance: &mockAttendanceRepo{},
		ledger:     newMockLedgerRepo(map[string]int64{"photographer001": 1000}),
		users: &mockUserRepo{users: map[string]*models.UserProfile{
			"photographer001": {ID: "photographer001", FCMToken: "123456789"},
		}},
		notifier: &mockNotifier{},
	}
	f.attendance.committed = f.ledger.isCommitted
	f.service = NewCheckInService(
		f.events,
		f.attendance,
		NewLedgerUpdater(f.ledger, WithRetryPolicy(5, time.Millisecond)),
		NewNotificationDispatcher(f.users, f.notifier, time.Second),
		stampOnTime,
	)
	return f
}

func checkInAt(t time.Time) *models.AttendanceRecord {
	return &models.AttendanceRecord{
		ID:               "attendance00001",
		EventID:          "event0000000001",
		PhotographerID:   "photographer001",
		Type:             models.CheckIn,
		CheckInTimestamp: t,
	}
}
