package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/alexbto/stonks/internal/apperr"
	"github.com/alexbto/stonks/internal/models"
	"github.com/alexbto/stonks/internal/services"
	"github.com/alexbto/stonks/internal/utils"
	"github.com/alexbto/stonks/internal/websocket"
)

// TradeHandler handles buy, sell and deposit requests
type TradeHandler struct {
	trading services.TradingService
	wsHub   *websocket.Hub
	render  *Renderer
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(trading services.TradingService, wsHub *websocket.Hub, render *Renderer) *TradeHandler {
	return &TradeHandler{
		trading: trading,
		wsHub:   wsHub,
		render:  render,
	}
}

// RegisterRoutes registers trade routes on the authenticated router
func (h *TradeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/buy", h.BuyForm).Methods("GET")
	router.HandleFunc("/buy", h.Buy).Methods("POST")
	router.HandleFunc("/sell", h.SellForm).Methods("GET")
	router.HandleFunc("/sell", h.Sell).Methods("POST")
	router.HandleFunc("/deposit", h.DepositForm).Methods("GET")
	router.HandleFunc("/deposit", h.Deposit).Methods("POST")
}

// BuyForm shows the buy page
func (h *TradeHandler) BuyForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "buy.html", nil)
}

// Buy purchases shares and redirects to the portfolio
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	shares, err := formDecimal(r, "shares")
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	txn, err := h.trading.Buy(r.Context(), userID, r.FormValue("symbol"), shares)
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	// Broadcast the executed trade to WebSocket clients
	h.wsHub.Broadcast(models.Message{Type: "trade", Content: txn})

	http.Redirect(w, r, "/", http.StatusFound)
}

// SellForm shows the sell page listing the user's current holdings
func (h *TradeHandler) SellForm(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	_, holdings, err := h.trading.Portfolio(r.Context(), userID)
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "sell.html", map[string]interface{}{
		"Holdings": holdings,
	})
}

// Sell disposes of shares and redirects to the portfolio
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	shares, err := formDecimal(r, "shares")
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	txn, err := h.trading.Sell(r.Context(), userID, r.FormValue("symbol"), shares)
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	// Broadcast the executed trade to WebSocket clients
	h.wsHub.Broadcast(models.Message{Type: "trade", Content: txn})

	http.Redirect(w, r, "/", http.StatusFound)
}

// DepositForm shows the deposit page
func (h *TradeHandler) DepositForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "deposit.html", nil)
}

// Deposit adds funds to the user's cash balance
func (h *TradeHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	funds, err := formDecimal(r, "funds")
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	if _, err := h.trading.Deposit(r.Context(), userID, funds); err != nil {
		h.render.Apology(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// formDecimal parses a required decimal form field.
func formDecimal(r *http.Request, name string) (decimal.Decimal, error) {
	value := r.FormValue(name)
	if value == "" {
		return decimal.Decimal{}, apperr.New(apperr.Validation, "must provide "+name)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, apperr.Wrap(apperr.Validation, name+" must be a number", err)
	}
	return d, nil
}
