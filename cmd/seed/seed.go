package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/nulzo/netstats/internal/store/model"
	"github.com/nulzo/netstats/internal/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	dsn := flag.String("dsn", "netstats.db", "SQLite database to seed")
	days := flag.Int("days", 90, "Number of daily records to generate, ending yesterday")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	if *days <= 0 {
		log.Fatalf("days must be positive, got %d", *days)
	}

	repo, err := sqlite.NewSQLiteStorage(*dsn, zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	records := generate(*days, time.Now().UTC(), rand.New(rand.NewSource(*seed)))

	if err := repo.InsertRecords(context.Background(), records); err != nil {
		log.Fatalf("Seeding failed (database already seeded?): %v", err)
	}

	fmt.Printf("\nSuccessfully seeded database!\n")
	fmt.Printf("Records: %d (%s to %s)\n",
		len(records),
		records[0].Date.Format("2006-01-02"),
		records[len(records)-1].Date.Format("2006-01-02"),
	)
	fmt.Printf("Try: curl 'http://localhost:8081/total?days=30'\n")
}

// online_time is recorded in minutes
const minutesPerDay = 24 * 60

// generate returns one record per day at midnight UTC, oldest first, the last
// one dated the day before now.
func generate(days int, now time.Time, rng *rand.Rand) []model.UsageRecord {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	records := make([]model.UsageRecord, 0, days)

	for i := days; i >= 1; i-- {
		sent := round2(rng.Float64() * 500)
		received := round2(rng.Float64() * 4000)
		records = append(records, model.UsageRecord{
			Date:              today.AddDate(0, 0, -i),
			Connections:       int64(rng.Intn(12) + 1),
			OnlineTime:        int64(rng.Intn(minutesPerDay + 1)),
			MegabytesSent:     sent,
			MegabytesReceived: received,
			MegabytesTotal:    round2(sent + received),
		})
	}
	return records
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
