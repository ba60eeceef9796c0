package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/arenhart/tradepost/internal/roster"
	"github.com/arenhart/tradepost/internal/scrape/ligamagic"
	"github.com/arenhart/tradepost/internal/sheets"
	"github.com/arenhart/tradepost/internal/store"
	"github.com/arenhart/tradepost/internal/store/repository"
)

const (
	appName    = "tradepost-scrape"
	appVersion = "1.0.0"
)

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	var (
		configSource = flag.String("config", getEnv("ROSTER_CSV_URL", ""), "Roster configuration: published CSV URL or local .csv path")
		outPath      = flag.String("out", getEnv("SNAPSHOT_PATH", roster.DefaultSnapshotPath), "Snapshot output file")
		dsn          = flag.String("dsn", getEnv("DATABASE_DSN", ""), "Optional Postgres DSN; snapshot is also persisted there when set")
		maxPages     = flag.Int("max-pages", 25, "Page cap per listing")
		delay        = flag.Duration("delay", ligamagic.MinRequestInterval, "Minimum delay between page loads")
	)

	flag.Parse()

	if *configSource == "" {
		log.Fatalf("Specify --config (published CSV URL or local file)")
	}

	entries, err := loadEntries(*configSource)
	if err != nil {
		log.Fatalf("load roster configuration: %v", err)
	}
	log.Printf("✓ Loaded %d configured players", len(entries))

	client, err := ligamagic.NewClient()
	if err != nil {
		log.Fatalf("start browser session: %v", err)
	}
	defer client.Close()
	client.SetRequestInterval(*delay)

	fetcher := ligamagic.NewFetcherWithMaxPages(client, *maxPages)
	builder := roster.NewBuilder(fetcher)

	snap, err := builder.Build(context.Background(), entries)
	if err != nil {
		log.Fatalf("build roster: %v", err)
	}

	if err := roster.SaveFile(*outPath, snap); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}
	log.Printf("✓ Snapshot written to %s (%d players)", *outPath, len(snap.Players))

	if *dsn != "" {
		db, err := store.NewDatabase(*dsn)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("run migrations: %v", err)
		}

		if err := repository.NewSnapshotRepository(db).Save(context.Background(), snap); err != nil {
			log.Fatalf("persist snapshot: %v", err)
		}
		log.Println("✓ Snapshot persisted to database")
	}

	log.Println("✓ Scraping run completed successfully")
}

// loadEntries reads the configuration from a URL or a local CSV file.
func loadEntries(source string) ([]roster.ConfigEntry, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return sheets.NewClient(source).FetchEntries()
	}
	return sheets.LoadFile(source)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
