package main

import (
	"context"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"photo-checkin/bot"
	"photo-checkin/config"
	"photo-checkin/internal/handlers"
	"photo-checkin/internal/repository"
	"photo-checkin/internal/services"
	_ "photo-checkin/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Config loaded successfully")

	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: cfg.DataDir})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trigger := initApplication(ctx, app, cfg)

	// Newly created check-ins are processed after the create commits
	app.OnRecordAfterCreateSuccess(repository.CollectionAttendance).BindFunc(func(e *core.RecordEvent) error {
		trigger.Dispatch(repository.AttendanceFromRecord(e.Record))
		return e.Next()
	})

	checkInHandler := handlers.NewCheckInHandler(trigger)
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.POST("/api/checkins/process", func(e *core.RequestEvent) error {
			checkInHandler.HandleProcess(e.Response, e.Request)
			return nil
		}).Bind(apis.RequireSuperuserAuth())

		se.Router.GET("/health", func(e *core.RequestEvent) error {
			handlers.HandleHealth(e.Response, e.Request)
			return nil
		})

		return se.Next()
	})

	// Graceful shutdown: let in-flight check-ins finish
	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		log.Println("Shutdown signal received, waiting for in-flight check-ins...")
		cancel()
		trigger.Wait()
		log.Println("Check-in processing stopped gracefully")
		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initApplication initializes all application dependencies
func initApplication(ctx context.Context, app core.App, cfg *config.Config) *services.Trigger {
	// Initialize repositories backed by the embedded PocketBase store
	eventRepo := repository.NewPocketBaseEventRepository(app)
	attendanceRepo := repository.NewPocketBaseAttendanceRepository(app)
	ledgerRepo := repository.NewPocketBaseLedgerRepository(app)
	userRepo := repository.NewPocketBaseUserRepository(app)

	// Initialize Telegram Bot
	var tg *bot.Bot
	if cfg.TelegramBotToken != "" {
		var err error
		tg, err = bot.New(cfg.TelegramBotToken, cfg.AuthorizedChatID, userRepo, ledgerRepo, attendanceRepo)
		if err != nil {
			log.Printf("Warning: Failed to init Telegram Bot: %v", err)
		} else {
			tg.StartPolling(ctx)
			log.Println("Telegram Bot Initialized")
		}
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, notifications disabled")
	}
	botNotifier := bot.NewNotifier(tg)

	// Initialize services
	ledger := services.NewLedgerUpdater(ledgerRepo,
		services.WithRetryPolicy(cfg.LedgerMaxTries, cfg.LedgerRetryInterval))
	dispatcher := services.NewNotificationDispatcher(userRepo, botNotifier, cfg.NotifyTimeout)
	checkInService := services.NewCheckInService(eventRepo, attendanceRepo, ledger, dispatcher, cfg.StampOnTime)

	return services.NewTrigger(checkInService)
}
