package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/alexbto/stonks/internal/services"
	"github.com/alexbto/stonks/internal/utils"
)

// QuoteHandler handles price quote lookups
type QuoteHandler struct {
	trading services.TradingService
	render  *Renderer
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(trading services.TradingService, render *Renderer) *QuoteHandler {
	return &QuoteHandler{
		trading: trading,
		render:  render,
	}
}

// RegisterRoutes registers quote routes on the authenticated router
func (h *QuoteHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/quote", h.QuoteForm).Methods("GET")
	router.HandleFunc("/quote", h.Quote).Methods("POST")
}

// QuoteForm shows the quote page
func (h *QuoteHandler) QuoteForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "quote.html", nil)
}

// Quote looks up the submitted symbol and shows its current price
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.trading.Quote(r.Context(), r.FormValue("symbol"))
	if err != nil {
		h.render.Apology(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "quoted.html", map[string]interface{}{
		"Name":   q.Name,
		"Symbol": q.Symbol,
		"Price":  utils.FormatUSD(decimal.NewFromFloat(q.Price)),
	})
}
