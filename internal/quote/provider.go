// Package quote looks up point-in-time price quotes for ticker symbols from
// an external provider.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound means the provider does not recognize the symbol.
var ErrNotFound = errors.New("symbol not found")

// ErrUnavailable means the provider could not be reached or answered with a
// server error. Callers must treat this differently from an unknown symbol.
var ErrUnavailable = errors.New("quote provider unavailable")

// Quote is a point-in-time price/name lookup result for a ticker symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

// Provider resolves ticker symbols to quotes.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}

// Client fetches quotes from an IEX-style HTTP endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a quote client with the given request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the current quote for symbol. It returns ErrNotFound for
// symbols the provider does not know and ErrUnavailable when the provider
// cannot be reached.
func (c *Client) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrNotFound
	}

	endpoint := fmt.Sprintf("%s/stable/stock/%s/quote?token=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var payload struct {
		Symbol      string  `json:"symbol"`
		CompanyName string  `json:"companyName"`
		LatestPrice float64 `json:"latestPrice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if payload.Symbol == "" {
		return nil, ErrNotFound
	}

	return &Quote{
		Symbol: payload.Symbol,
		Name:   payload.CompanyName,
		Price:  payload.LatestPrice,
	}, nil
}
