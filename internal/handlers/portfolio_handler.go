package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/alexbto/stonks/internal/quote"
	"github.com/alexbto/stonks/internal/services"
	"github.com/alexbto/stonks/internal/utils"
)

// PortfolioHandler handles the portfolio and history pages
type PortfolioHandler struct {
	trading services.TradingService
	quotes  quote.Provider
	render  *Renderer
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(trading services.TradingService, quotes quote.Provider, render *Renderer) *PortfolioHandler {
	return &PortfolioHandler{
		trading: trading,
		quotes:  quotes,
		render:  render,
	}
}

// RegisterRoutes registers portfolio routes on the authenticated router
func (h *PortfolioHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Index).Methods("GET")
	router.HandleFunc("/history", h.History).Methods("GET")
}

// holdingView is one portfolio table row, combining a holding with its live
// quoted price.
type holdingView struct {
	Symbol string
	Name   string
	Shares decimal.Decimal
	Price  string
	Value  string
}

// Index shows the user's cash and holdings with live prices
func (h *PortfolioHandler) Index(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	user, holdings, err := h.trading.Portfolio(r.Context(), userID)
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	total := user.Cash
	rows := make([]holdingView, 0, len(holdings))
	for _, holding := range holdings {
		row := holdingView{
			Symbol: holding.Symbol,
			Name:   holding.Name,
			Shares: holding.Shares,
			Price:  "N/A",
			Value:  "N/A",
		}
		// A quote failure degrades the row, not the page.
		if q, err := h.quotes.Lookup(r.Context(), holding.Symbol); err == nil {
			price := decimal.NewFromFloat(q.Price)
			value := price.Mul(holding.Shares)
			row.Price = utils.FormatUSD(price)
			row.Value = utils.FormatUSD(value)
			total = total.Add(value)
		}
		rows = append(rows, row)
	}

	h.render.Render(w, http.StatusOK, "index.html", map[string]interface{}{
		"Holdings": rows,
		"Cash":     utils.FormatUSD(user.Cash),
		"Total":    utils.FormatUSD(total),
	})
}

// History shows the user's transactions, oldest first
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	txns, err := h.trading.History(r.Context(), userID)
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "history.html", map[string]interface{}{
		"Transactions": txns,
	})
}
