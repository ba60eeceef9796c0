package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arenhart/tradepost/internal/service"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, trades *service.TradeService, scraper ScrapeTrigger) *Server {
	handler := NewHandler(trades, scraper)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Roster
	api.HandleFunc("/players", handler.GetPlayers).Methods("GET")
	api.HandleFunc("/players/{name}", handler.GetPlayer).Methods("GET")

	// Trade matching
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches/{name}", handler.GetMatchesForPlayer).Methods("GET")
	api.HandleFunc("/search", handler.SearchCards).Methods("GET")

	// Scraping control
	api.HandleFunc("/scrape", handler.TriggerScrape).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
