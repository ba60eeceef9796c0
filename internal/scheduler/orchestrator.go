package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/arenhart/tradepost/internal/publisher"
	"github.com/arenhart/tradepost/internal/roster"
	"github.com/arenhart/tradepost/internal/scrape/ligamagic"
	"github.com/arenhart/tradepost/internal/service"
	"github.com/arenhart/tradepost/internal/sheets"
)

// Notifier receives an event after every completed scraping run, e.g.
// the websocket hub pushing updates to connected clients.
type Notifier interface {
	NotifySnapshotUpdated(summary publisher.RunSummary)
}

// Config holds scheduler configuration
type Config struct {
	DailyScrapeHour   int  // Default: 4 (4 AM)
	EnableDailyScrape bool // Default: true
	MaxPages          int  // Page cap per list
	MaxRetries        int  // Default: 3
	RetryDelay        time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyScrapeHour:   4,
		EnableDailyScrape: true,
		MaxPages:          ligamagic.DefaultMaxPages,
		MaxRetries:        3,
		RetryDelay:        30 * time.Second,
	}
}

// Orchestrator schedules full scraping runs: one per day at the
// configured hour plus manual triggers from the API.
type Orchestrator struct {
	sheetsClient *sheets.Client
	trades       *service.TradeService
	publisher    *publisher.RedisPublisher
	notifier     Notifier
	config       *Config

	trigger chan struct{}
	cancel  context.CancelFunc
}

// NewOrchestrator creates a scheduler. publisher and notifier may be
// nil; the run itself only needs the configuration source and the
// trade service to store results.
func NewOrchestrator(sheetsClient *sheets.Client, trades *service.TradeService, pub *publisher.RedisPublisher, notifier Notifier, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	return &Orchestrator{
		sheetsClient: sheetsClient,
		trades:       trades,
		publisher:    pub,
		notifier:     notifier,
		config:       config,
		trigger:      make(chan struct{}, 1),
	}
}

// Start runs the scheduling loop until the context is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("Scheduler started (daily scrape: %v at %02d:00)", o.config.EnableDailyScrape, o.config.DailyScrapeHour)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for {
		timer := time.NewTimer(o.untilNextDailyRun())

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Scheduler stopping...")
			return
		case <-o.trigger:
			timer.Stop()
			o.runWithRetry(ctx)
		case <-timer.C:
			if o.config.EnableDailyScrape {
				o.runWithRetry(ctx)
			}
		}
	}
}

// Stop cancels the scheduling loop.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// TriggerRun requests an immediate scraping run. Returns false when a
// trigger is already pending.
func (o *Orchestrator) TriggerRun() bool {
	select {
	case o.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// untilNextDailyRun computes the wait until the configured hour.
func (o *Orchestrator) untilNextDailyRun() time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), o.config.DailyScrapeHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// runWithRetry runs a scrape, retrying transient failures.
func (o *Orchestrator) runWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		err := o.runScrape(ctx)
		if err == nil {
			return
		}

		log.Printf("⚠️  Scrape run failed (attempt %d/%d): %v", attempt, o.config.MaxRetries, err)
		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
			}
		}
	}

	log.Printf("❌ Scrape run gave up after %d attempts", o.config.MaxRetries)
}

// runScrape performs one full scraping run: configuration → fetch →
// snapshot → store → announce. The browser session lives exactly as
// long as the run.
func (o *Orchestrator) runScrape(ctx context.Context) error {
	log.Println("Starting scraping run...")
	started := time.Now()

	entries, err := o.sheetsClient.FetchEntries()
	if err != nil {
		return fmt.Errorf("loading roster configuration: %w", err)
	}
	log.Printf("✓ Loaded %d configured players", len(entries))

	client, err := ligamagic.NewClient()
	if err != nil {
		return fmt.Errorf("starting browser session: %w", err)
	}
	defer client.Close()

	fetcher := ligamagic.NewFetcherWithMaxPages(client, o.config.MaxPages)
	builder := roster.NewBuilder(fetcher)

	snap, err := builder.Build(ctx, entries)
	if err != nil {
		return fmt.Errorf("building roster: %w", err)
	}

	if err := o.trades.StoreSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}

	summary := summarize(snap)
	log.Printf("✓ Scraping run finished in %v: %d players, %d cards, %d list failures",
		time.Since(started).Round(time.Second), summary.Players, summary.Cards, summary.Failures)

	if o.publisher != nil {
		if err := o.publisher.PublishSnapshotUpdated(ctx, summary); err != nil {
			log.Printf("⚠️  Publishing snapshot event failed: %v", err)
		}
	}
	if o.notifier != nil {
		o.notifier.NotifySnapshotUpdated(summary)
	}

	return nil
}

func summarize(snap roster.Snapshot) publisher.RunSummary {
	summary := publisher.RunSummary{
		ScrapedAt: snap.ScrapedAt,
		Players:   len(snap.Players),
	}
	for _, player := range snap.Players {
		summary.Cards += len(player.Have) + len(player.Want)
		summary.Failures += len(player.FetchErrors)
	}
	return summary
}
