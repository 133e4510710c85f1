package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"photo-checkin/internal/models"
)

// mockTrigger is a mock implementation for testing
type mockTrigger struct {
	handleCalled bool
	lastRecord   *models.AttendanceRecord
}

func (m *mockTrigger) Handle(ctx context.Context, rec *models.AttendanceRecord) {
	m.handleCalled = true
	m.lastRecord = rec
}

// Ensure mock implements the interface
var _ RecordHandler = (*mockTrigger)(nil)

func TestHandleProcess(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           interface{}
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:   "Valid check-in record",
			method: http.MethodPost,
			body: map[string]interface{}{
				"id":                 "attendance00001",
				"event_id":           "event0000000001",
				"photographer_id":    "photographer001",
				"type":               "check_in",
				"check_in_timestamp": "2026-03-01 09:55:00.000Z",
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:   "Check-out record is still accepted",
			method: http.MethodPost,
			body: map[string]interface{}{
				"id":   "attendance00002",
				"type": "check_out",
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "Invalid method - GET",
			method:         http.MethodGet,
			body:           nil,
			wantStatusCode: http.StatusMethodNotAllowed,
			wantCalled:     false,
		},
		{
			name:           "Invalid JSON body",
			method:         http.MethodPost,
			body:           "invalid json",
			wantStatusCode: http.StatusBadRequest,
			wantCalled:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := &mockTrigger{}
			handler := NewCheckInHandler(trigger)

			var bodyBytes []byte
			var err error
			if tt.body != nil {
				if str, ok := tt.body.(string); ok {
					bodyBytes = []byte(str)
				} else {
					bodyBytes, err = json.Marshal(tt.body)
					if err != nil {
						t.Fatalf("Failed to marshal body: %v", err)
					}
				}
			}

			req := httptest.NewRequest(tt.method, "/api/checkins/process", bytes.NewReader(bodyBytes))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.HandleProcess(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("HandleProcess() status = %v, want %v", rr.Code, tt.wantStatusCode)
			}
			if trigger.handleCalled != tt.wantCalled {
				t.Errorf("Handle called = %v, want %v", trigger.handleCalled, tt.wantCalled)
			}

			if tt.wantCalled {
				body := tt.body.(map[string]interface{})
				if trigger.lastRecord.ID != body["id"] {
					t.Errorf("ID = %v, want %v", trigger.lastRecord.ID, body["id"])
				}
				if string(trigger.lastRecord.Type) != body["type"] {
					t.Errorf("Type = %v, want %v", trigger.lastRecord.Type, body["type"])
				}
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("HandleHealth() status = %v, want %v", rr.Code, http.StatusOK)
	}
	if rr.Body.String() != "OK" {
		t.Errorf("HandleHealth() body = %q, want %q", rr.Body.String(), "OK")
	}
}
