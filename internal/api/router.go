package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/alexbto/stonks/internal/config"
	"github.com/alexbto/stonks/internal/handlers"
	"github.com/alexbto/stonks/internal/middleware"
	"github.com/alexbto/stonks/internal/quote"
	"github.com/alexbto/stonks/internal/services"
	"github.com/alexbto/stonks/internal/session"
	"github.com/alexbto/stonks/internal/websocket"
	"github.com/alexbto/stonks/web"
)

// SetupRouter configures all routes and returns the router
func SetupRouter(
	db *gorm.DB,
	quotes quote.Provider,
	sessions session.Store,
	wsHub *websocket.Hub,
	cfg *config.Config,
) (*mux.Router, error) {
	// Create a new router
	router := mux.NewRouter()
	router.Use(middleware.NoCache)

	// Add health check endpoint
	router.HandleFunc("/api/health", HealthHandler).Methods("GET")

	// WebSocket trade feed
	router.HandleFunc("/ws", wsHub.HandleWebSocket)

	// Serve static files
	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(web.Static())),
	)

	renderer, err := handlers.NewRenderer(web.Templates())
	if err != nil {
		return nil, err
	}

	// Create services
	authService := services.NewAuthService(db, cfg.Trading.StartingCash)
	tradingService := services.NewTradingService(db, quotes)

	// Create handlers using services
	authHandler := handlers.NewAuthHandler(authService, sessions, renderer)
	tradeHandler := handlers.NewTradeHandler(tradingService, wsHub, renderer)
	quoteHandler := handlers.NewQuoteHandler(tradingService, renderer)
	portfolioHandler := handlers.NewPortfolioHandler(tradingService, quotes, renderer)

	// Public routes (no session required)
	authHandler.RegisterRoutes(router)

	// Routes behind the login gate
	authRouter := router.NewRoute().Subrouter()
	authRouter.Use(middleware.RequireLogin(sessions))

	tradeHandler.RegisterRoutes(authRouter)
	quoteHandler.RegisterRoutes(authRouter)
	portfolioHandler.RegisterRoutes(authRouter)

	return router, nil
}
