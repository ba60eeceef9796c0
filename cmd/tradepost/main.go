package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/arenhart/tradepost/internal/api/rest"
	"github.com/arenhart/tradepost/internal/api/websocket"
	"github.com/arenhart/tradepost/internal/cache"
	"github.com/arenhart/tradepost/internal/publisher"
	"github.com/arenhart/tradepost/internal/roster"
	"github.com/arenhart/tradepost/internal/scheduler"
	"github.com/arenhart/tradepost/internal/service"
	"github.com/arenhart/tradepost/internal/sheets"
	"github.com/arenhart/tradepost/internal/store"
)

const (
	serviceName    = "tradepost"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Card Trade Discovery Service", serviceName, serviceVersion)

	// Load configuration from environment
	config := loadConfig()

	// The roster configuration source is the one thing we cannot run
	// without: no player table means nothing to scrape or match.
	if config.RosterCSVURL == "" {
		log.Fatalf("ROSTER_CSV_URL is required (published CSV of the player configuration sheet)")
	}
	sheetsClient := sheets.NewClient(config.RosterCSVURL)

	// Initialize database connection (optional layer)
	var db *store.Database
	if config.DatabaseDSN != "" {
		var err error
		db, err = store.NewDatabase(config.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("✓ Connected to database")

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		log.Println("✓ Database migrations applied")
	} else {
		log.Println("⚠️  DATABASE_DSN not set, running without database persistence")
	}

	// Initialize Redis cache and publisher with retry logic (optional layer)
	var redisCache *cache.RedisCache
	var redisPublisher *publisher.RedisPublisher
	if config.RedisURL != "" {
		maxRetries := 30
		retryDelay := 2 * time.Second

		log.Println("Connecting to Redis...")
		var err error
		for i := 0; i < maxRetries; i++ {
			redisCache, err = cache.NewRedisCache(config.RedisURL)
			if err == nil {
				break
			}

			if i < maxRetries-1 {
				log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
				time.Sleep(retryDelay)
			} else {
				log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
			}
		}
		defer redisCache.Close()
		log.Println("✓ Connected to Redis")

		redisPublisher = publisher.NewRedisPublisherFromClient(redisCache.Client())
	} else {
		log.Println("⚠️  REDIS_URL not set, running without cache")
	}

	// Trade service over the snapshot layers
	trades := service.NewTradeService(db, redisCache, config.SnapshotPath)
	if snap := trades.CurrentSnapshot(context.Background()); len(snap.Players) > 0 {
		log.Printf("✓ Loaded existing snapshot: %d players", len(snap.Players))
	} else {
		log.Println("⚠️  No existing snapshot, roster is empty until the first scraping run")
	}

	// WebSocket server for snapshot update pushes
	wsServer := websocket.NewServer()

	// Scheduler for daily and on-demand scraping runs
	schedulerConfig := &scheduler.Config{
		DailyScrapeHour:   config.ScrapeHour,
		EnableDailyScrape: config.EnableDailyScrape,
		MaxPages:          config.MaxPages,
		MaxRetries:        3,
		RetryDelay:        30 * time.Second,
	}
	sched := scheduler.NewOrchestrator(sheetsClient, trades, redisPublisher, wsServer, schedulerConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Start(ctx)
	log.Println("✓ Scheduler started")

	// REST API server
	restServer := rest.NewServer(config.RESTPort, trades, sched)
	go func() {
		log.Printf("Starting REST API server on port %s", config.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()
	log.Printf("✓ REST API server listening on :%s", config.RESTPort)

	go func() {
		if err := wsServer.Start(config.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()
	log.Printf("✓ WebSocket server listening on :%s", config.WSPort)
	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down tradepost gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Println("tradepost stopped")
}

type Config struct {
	DatabaseDSN       string
	RedisURL          string
	RESTPort          string
	WSPort            string
	RosterCSVURL      string
	SnapshotPath      string
	ScrapeHour        int
	EnableDailyScrape bool
	MaxPages          int
}

func loadConfig() Config {
	return Config{
		DatabaseDSN:       getEnv("DATABASE_DSN", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		RESTPort:          getEnv("REST_PORT", "8080"),
		WSPort:            getEnv("WS_PORT", "8081"),
		RosterCSVURL:      getEnv("ROSTER_CSV_URL", ""),
		SnapshotPath:      getEnv("SNAPSHOT_PATH", roster.DefaultSnapshotPath),
		ScrapeHour:        getEnvInt("SCRAPE_HOUR", 4),
		EnableDailyScrape: getEnv("ENABLE_DAILY_SCRAPE", "true") == "true",
		MaxPages:          getEnvInt("MAX_PAGES", 25),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
