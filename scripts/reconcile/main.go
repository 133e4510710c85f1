package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"photo-checkin/config"
	"photo-checkin/internal/repository"
)

func main() {
	replay := flag.Bool("replay", false, "post each unreconciled record back to /api/checkins/process")
	limit := flag.Int("limit", 200, "maximum number of records to inspect")
	flag.Parse()

	fmt.Println("🧾 Late Check-In Reconciliation")
	fmt.Println("===============================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if cfg.PocketBaseToken == "" {
		fmt.Println("❌ POCKETBASE_TOKEN not set")
		fmt.Println("\nPlease set a superuser token:")
		fmt.Println("  export POCKETBASE_TOKEN=your_token_here")
		os.Exit(1)
	}

	fmt.Printf("Connecting to: %s\n", cfg.PocketBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo := repository.NewPocketBaseRESTAttendanceRepository(cfg.PocketBaseURL, cfg.PocketBaseToken)
	records, err := repo.ListUnreconciled(ctx, *limit)
	if err != nil {
		log.Fatalf("❌ Failed to list records: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("\n✅ Every late check-in has a committed deduction")
		return
	}

	fmt.Printf("\n⚠️  %d late check-in(s) without a committed deduction:\n", len(records))
	for _, r := range records {
		fmt.Printf("   • %s photographer=%s event=%s amount=%s at=%v\n",
			r.ID, r.PhotographerID, r.EventID, r.LateDeductionApplied, r.CheckInTimestamp)
	}

	if !*replay {
		fmt.Println("\nRun again with -replay to reprocess them.")
		return
	}

	failed := 0
	for _, r := range records {
		if err := repo.Replay(ctx, r); err != nil {
			fmt.Printf("   ❌ %s: %v\n", r.ID, err)
			failed++
			continue
		}
		fmt.Printf("   ✅ %s replayed\n", r.ID)
	}

	fmt.Printf("\n🎉 Replayed %d/%d record(s)\n", len(records)-failed, len(records))
	if failed > 0 {
		os.Exit(1)
	}
}
