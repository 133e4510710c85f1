package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Embedded PocketBase
	DataDir string `env:"PB_DATA_DIR" envDefault:"pb_data"`

	// Remote PocketBase (reconcile script)
	PocketBaseURL   string `env:"POCKETBASE_URL" envDefault:"http://127.0.0.1:8090"`
	PocketBaseToken string `env:"POCKETBASE_TOKEN"` // superuser auth token

	// Telegram Bot
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AuthorizedChatID int64  `env:"AUTHORIZED_CHAT_ID"`

	// Check-in processing
	StampOnTime         bool          `env:"STAMP_ON_TIME" envDefault:"true"`
	LedgerMaxTries      uint          `env:"LEDGER_MAX_TRIES" envDefault:"5"`
	LedgerRetryInterval time.Duration `env:"LEDGER_RETRY_INTERVAL" envDefault:"50ms"`
	NotifyTimeout       time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
}

func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("godotenv.Load() error: %v", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.LedgerMaxTries == 0 {
		return nil, fmt.Errorf("LEDGER_MAX_TRIES must be at least 1")
	}

	return &cfg, nil
}
