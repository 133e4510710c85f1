package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"photo-checkin/internal/models"
)

// PocketBaseRESTAttendanceRepository reads attendance records from a remote
// PocketBase server and replays them through the check-in endpoint
type PocketBaseRESTAttendanceRepository struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewPocketBaseRESTAttendanceRepository creates repository
func NewPocketBaseRESTAttendanceRepository(baseURL, authToken string) *PocketBaseRESTAttendanceRepository {
	return &PocketBaseRESTAttendanceRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *PocketBaseRESTAttendanceRepository) addAuthHeader(req *http.Request) {
	if r.authToken != "" {
		req.Header.Set("Authorization", r.authToken)
	}
}

type restAttendanceItem struct {
	ID                   string          `json:"id"`
	EventID              string          `json:"event_id"`
	PhotographerID       string          `json:"photographer_id"`
	Type                 string          `json:"type"`
	CheckInTimestamp     string          `json:"check_in_timestamp"`
	IsLate               bool            `json:"is_late"`
	LateDeductionApplied decimal.Decimal `json:"late_deduction_applied"`
	DeductionCommitted   bool            `json:"deduction_committed"`
}

// ListUnreconciled returns check-ins stamped late whose ledger deduction never committed
func (r *PocketBaseRESTAttendanceRepository) ListUnreconciled(ctx context.Context, limit int) ([]models.AttendanceRecord, error) {
	filter := "type='check_in' && is_late=true && deduction_committed=false"
	apiURL := fmt.Sprintf("%s/api/collections/%s/records?filter=%s&sort=check_in_timestamp&perPage=%d",
		r.baseURL, CollectionAttendance, url.QueryEscape(filter), limit)

	log.Printf("🔍 Listing unreconciled late check-ins: %s", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to list attendance records: %s - %s", resp.Status, string(body))
	}

	var result struct {
		Items []restAttendanceItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	records := make([]models.AttendanceRecord, 0, len(result.Items))
	for _, item := range result.Items {
		var checkIn any
		if item.CheckInTimestamp != "" {
			checkIn = item.CheckInTimestamp
		}
		records = append(records, models.AttendanceRecord{
			ID:                   item.ID,
			EventID:              item.EventID,
			PhotographerID:       item.PhotographerID,
			Type:                 models.AttendanceType(item.Type),
			CheckInTimestamp:     checkIn,
			IsLate:               item.IsLate,
			LateDeductionApplied: item.LateDeductionApplied,
			DeductionCommitted:   item.DeductionCommitted,
		})
	}
	return records, nil
}

// Replay posts a record to the check-in processing endpoint
func (r *PocketBaseRESTAttendanceRepository) Replay(ctx context.Context, record models.AttendanceRecord) error {
	apiURL := fmt.Sprintf("%s/api/checkins/process", r.baseURL)

	jsonData, err := json.Marshal(record)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to replay record %s: %s - %s", record.ID, resp.Status, string(body))
	}
	return nil
}
