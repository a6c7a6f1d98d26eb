package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/alexbto/stonks/internal/api"
	"github.com/alexbto/stonks/internal/config"
	"github.com/alexbto/stonks/internal/db"
	"github.com/alexbto/stonks/internal/quote"
	"github.com/alexbto/stonks/internal/session"
	"github.com/alexbto/stonks/internal/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if cfg.Quote.APIKey == "" {
		log.Fatal("API_KEY not set")
	}

	// Initialize database connection
	database, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize Redis client
	redisClient, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Quote provider with a Redis read-through cache
	quotes := quote.NewCache(
		quote.NewClient(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.Timeout),
		redisClient,
		cfg.Quote.CacheTTL,
	)

	// Redis-backed sessions
	sessions := session.NewRedisStore(redisClient, cfg.Session.TTL)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Initialize router
	router, err := api.SetupRouter(database, quotes, sessions, wsHub, cfg)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	// Set up CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	// Apply CORS middleware
	handler := corsMiddleware.Handler(router)

	// Start the server
	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, handler))
}
