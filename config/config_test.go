package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DataDir != "pb_data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "pb_data")
	}
	if !cfg.StampOnTime {
		t.Errorf("StampOnTime = false, want true")
	}
	if cfg.LedgerMaxTries != 5 {
		t.Errorf("LedgerMaxTries = %d, want 5", cfg.LedgerMaxTries)
	}
	if cfg.LedgerRetryInterval != 50*time.Millisecond {
		t.Errorf("LedgerRetryInterval = %v, want 50ms", cfg.LedgerRetryInterval)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Errorf("NotifyTimeout = %v, want 10s", cfg.NotifyTimeout)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PB_DATA_DIR", "/var/lib/checkin")
	t.Setenv("AUTHORIZED_CHAT_ID", "-100123")
	t.Setenv("STAMP_ON_TIME", "false")
	t.Setenv("LEDGER_MAX_TRIES", "8")
	t.Setenv("LEDGER_RETRY_INTERVAL", "5ms")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DataDir != "/var/lib/checkin" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.AuthorizedChatID != -100123 {
		t.Errorf("AuthorizedChatID = %d, want -100123", cfg.AuthorizedChatID)
	}
	if cfg.StampOnTime {
		t.Errorf("StampOnTime = true, want false")
	}
	if cfg.LedgerMaxTries != 8 || cfg.LedgerRetryInterval != 5*time.Millisecond {
		t.Errorf("retry policy = %d/%v, want 8/5ms", cfg.LedgerMaxTries, cfg.LedgerRetryInterval)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Zero tries", "LEDGER_MAX_TRIES", "0"},
		{"Bad duration", "NOTIFY_TIMEOUT", "soon"},
		{"Bad chat id", "AUTHORIZED_CHAT_ID", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() error = nil, want error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile(".env", []byte("NOTIFY_TIMEOUT=3s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv only fills unset variables; t.Setenv restores the original on cleanup
	t.Setenv("NOTIFY_TIMEOUT", "")
	os.Unsetenv("NOTIFY_TIMEOUT")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.NotifyTimeout != 3*time.Second {
		t.Errorf("NotifyTimeout = %v, want 3s", cfg.NotifyTimeout)
	}
}
