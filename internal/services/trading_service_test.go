package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alexbto/stonks/internal/apperr"
	"github.com/alexbto/stonks/internal/models"
	"github.com/alexbto/stonks/internal/quote"
)

// fakeQuotes serves canned quotes, or a fixed error when err is set.
type fakeQuotes struct {
	quotes map[string]quote.Quote
	err    error
}

func (f *fakeQuotes) Lookup(ctx context.Context, symbol string) (*quote.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.quotes[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil, quote.ErrNotFound
	}
	return &q, nil
}

func newTestTrading(t *testing.T) (TradingService, *gorm.DB, *fakeQuotes) {
	t.Helper()

	database := setupTestDB(t)
	quotes := &fakeQuotes{quotes: map[string]quote.Quote{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc", Price: 100},
		"NFLX": {Symbol: "NFLX", Name: "Netflix Inc", Price: 10},
	}}
	return NewTradingService(database, quotes), database, quotes
}

func createUser(t *testing.T, database *gorm.DB, username string, cash int64) models.User {
	t.Helper()

	user := models.User{
		Username:       username,
		HashedPassword: "x",
		Cash:           decimal.NewFromInt(cash),
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func assertUnchanged(t *testing.T, database *gorm.DB, userID uint, cash int64) {
	t.Helper()

	var user models.User
	database.First(&user, userID)
	if !user.Cash.Equal(decimal.NewFromInt(cash)) {
		t.Errorf("Expected cash unchanged at %d, got %s", cash, user.Cash)
	}

	var txnCount, holdingCount int64
	database.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&txnCount)
	database.Model(&models.Holding{}).Where("user_id = ?", userID).Count(&holdingCount)
	if txnCount != 0 {
		t.Errorf("Expected no transactions, got %d", txnCount)
	}
	if holdingCount != 0 {
		t.Errorf("Expected no holdings, got %d", holdingCount)
	}
}

func TestBuyCreatesHoldingAndTransaction(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	txn, err := service.Buy(context.Background(), user.ID, "aapl", decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("Failed to buy: %v", err)
	}
	if txn.Symbol != "AAPL" || !txn.Shares.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Unexpected transaction: %+v", txn)
	}

	var after models.User
	database.First(&after, user.ID)
	if !after.Cash.Equal(decimal.NewFromInt(700)) {
		t.Errorf("Expected cash 700, got %s", after.Cash)
	}

	var holding models.Holding
	if err := database.Where("user_id = ? AND symbol = ?", user.ID, "AAPL").First(&holding).Error; err != nil {
		t.Fatalf("Expected a holding row: %v", err)
	}
	if !holding.Shares.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected 3 shares, got %s", holding.Shares)
	}
	if holding.Name != "Apple Inc" {
		t.Errorf("Expected holding name from quote, got %q", holding.Name)
	}

	var txns []models.Transaction
	database.Where("user_id = ?", user.ID).Find(&txns)
	if len(txns) != 1 {
		t.Fatalf("Expected exactly one transaction, got %d", len(txns))
	}
	if !txns[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected price 100, got %s", txns[0].Price)
	}
}

func TestBuyAddsToExistingHolding(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	if _, err := service.Buy(context.Background(), user.ID, "AAPL", decimal.NewFromInt(2)); err != nil {
		t.Fatalf("Failed first buy: %v", err)
	}
	if _, err := service.Buy(context.Background(), user.ID, "AAPL", decimal.NewFromInt(3)); err != nil {
		t.Fatalf("Failed second buy: %v", err)
	}

	var holdings []models.Holding
	database.Where("user_id = ?", user.ID).Find(&holdings)
	if len(holdings) != 1 {
		t.Fatalf("Expected one holding row, got %d", len(holdings))
	}
	if !holdings[0].Shares.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected 5 shares, got %s", holdings[0].Shares)
	}
}

func TestBuySupportsFractionalShares(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	half := decimal.RequireFromString("0.5")
	if _, err := service.Buy(context.Background(), user.ID, "AAPL", half); err != nil {
		t.Fatalf("Failed to buy fractional shares: %v", err)
	}

	var after models.User
	database.First(&after, user.ID)
	if !after.Cash.Equal(decimal.NewFromInt(950)) {
		t.Errorf("Expected cash 950, got %s", after.Cash)
	}
}

func TestBuyInsufficientCash(t *testing.T) {
	service, database, _ := newTestTrading(t)
	// Covers one share at 100 but not the full cost of two.
	user := createUser(t, database, "alice", 150)

	_, err := service.Buy(context.Background(), user.ID, "AAPL", decimal.NewFromInt(2))
	if err == nil {
		t.Fatal("Expected error when cash < price*shares")
	}
	if apperr.KindOf(err) != apperr.InsufficientFunds {
		t.Errorf("Expected InsufficientFunds, got kind %v", apperr.KindOf(err))
	}
	assertUnchanged(t, database, user.ID, 150)
}

func TestBuyInvalidSymbol(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	_, err := service.Buy(context.Background(), user.ID, "ZZZZ", decimal.NewFromInt(1))
	if err == nil {
		t.Fatal("Expected error for unknown symbol")
	}
	if apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Expected NotFound, got kind %v", apperr.KindOf(err))
	}
	assertUnchanged(t, database, user.ID, 1000)
}

func TestBuyProviderUnavailable(t *testing.T) {
	service, database, quotes := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)
	quotes.err = quote.ErrUnavailable

	_, err := service.Buy(context.Background(), user.ID, "AAPL", decimal.NewFromInt(1))
	if apperr.KindOf(err) != apperr.Unavailable {
		t.Errorf("Expected Unavailable, got %v", err)
	}
	assertUnchanged(t, database, user.ID, 1000)
}

func TestBuyRejectsNonPositiveShares(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	for _, shares := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		_, err := service.Buy(context.Background(), user.ID, "AAPL", shares)
		if apperr.KindOf(err) != apperr.Validation {
			t.Errorf("Expected Validation for shares %s, got %v", shares, err)
		}
	}
	assertUnchanged(t, database, user.ID, 1000)
}

func TestSellReducesHoldingAndCreditsCash(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	if _, err := service.Buy(context.Background(), user.ID, "AAPL", decimal.NewFromInt(5)); err != nil {
		t.Fatalf("Failed to buy: %v", err)
	}

	txn, err := service.Sell(context.Background(), user.ID, "AAPL", decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("Failed to sell: %v", err)
	}
	if !txn.Shares.Equal(decimal.NewFromInt(-2)) {
		t.Errorf("Expected sell recorded as -2 shares, got %s", txn.Shares)
	}

	var after models.User
	database.First(&after, user.ID)
	if !after.Cash.Equal(decimal.NewFromInt(700)) {
		t.Errorf("Expected cash 700 after buying 5 and selling 2 at 100, got %s", after.Cash)
	}

	var holding models.Holding
	if err := database.Where("user_id = ? AND symbol = ?", user.ID, "AAPL").First(&holding).Error; err != nil {
		t.Fatalf("Expected holding to remain: %v", err)
	}
	if !holding.Shares.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected 3 shares left, got %s", holding.Shares)
	}
}

func TestSellEntirePositionRemovesOnlyThatHolding(t *testing.T) {
	service, database, _ := newTestTrading(t)
	alice := createUser(t, database, "alice", 1000)
	bob := createUser(t, database, "bob", 1000)

	if _, err := service.Buy(context.Background(), alice.ID, "AAPL", decimal.NewFromInt(2)); err != nil {
		t.Fatalf("Failed alice buy: %v", err)
	}
	if _, err := service.Buy(context.Background(), alice.ID, "NFLX", decimal.NewFromInt(4)); err != nil {
		t.Fatalf("Failed alice buy: %v", err)
	}
	if _, err := service.Buy(context.Background(), bob.ID, "AAPL", decimal.NewFromInt(7)); err != nil {
		t.Fatalf("Failed bob buy: %v", err)
	}

	if _, err := service.Sell(context.Background(), alice.ID, "AAPL", decimal.NewFromInt(2)); err != nil {
		t.Fatalf("Failed to sell: %v", err)
	}

	var aliceAAPL int64
	database.Model(&models.Holding{}).Where("user_id = ? AND symbol = ?", alice.ID, "AAPL").Count(&aliceAAPL)
	if aliceAAPL != 0 {
		t.Error("Expected alice's AAPL holding to be deleted")
	}

	var aliceNFLX, bobAAPL models.Holding
	if err := database.Where("user_id = ? AND symbol = ?", alice.ID, "NFLX").First(&aliceNFLX).Error; err != nil {
		t.Errorf("Expected alice's NFLX holding to survive: %v", err)
	}
	if err := database.Where("user_id = ? AND symbol = ?", bob.ID, "AAPL").First(&bobAAPL).Error; err != nil {
		t.Errorf("Expected bob's AAPL holding to survive: %v", err)
	}
	if !bobAAPL.Shares.Equal(decimal.NewFromInt(7)) {
		t.Errorf("Expected bob's shares untouched at 7, got %s", bobAAPL.Shares)
	}
}

func TestSellMoreThanHeld(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	if _, err := service.Buy(context.Background(), user.ID, "AAPL", decimal.NewFromInt(2)); err != nil {
		t.Fatalf("Failed to buy: %v", err)
	}

	_, err := service.Sell(context.Background(), user.ID, "AAPL", decimal.NewFromInt(3))
	if apperr.KindOf(err) != apperr.InsufficientShares {
		t.Fatalf("Expected InsufficientShares, got %v", err)
	}

	// State must be exactly as after the buy
	var after models.User
	database.First(&after, user.ID)
	if !after.Cash.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Expected cash unchanged at 800, got %s", after.Cash)
	}
	var holding models.Holding
	database.Where("user_id = ? AND symbol = ?", user.ID, "AAPL").First(&holding)
	if !holding.Shares.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected shares unchanged at 2, got %s", holding.Shares)
	}
	var txnCount int64
	database.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&txnCount)
	if txnCount != 1 {
		t.Errorf("Expected only the buy transaction, got %d rows", txnCount)
	}
}

func TestSellSymbolNotHeld(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	_, err := service.Sell(context.Background(), user.ID, "NFLX", decimal.NewFromInt(1))
	if apperr.KindOf(err) != apperr.InsufficientShares {
		t.Errorf("Expected InsufficientShares, got %v", err)
	}
}

func TestSellInvalidSymbol(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 1000)

	_, err := service.Sell(context.Background(), user.ID, "ZZZZ", decimal.NewFromInt(1))
	if apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Expected NotFound for unknown symbol, got %v", err)
	}
}

func TestDepositIncreasesOnlyThatUser(t *testing.T) {
	service, database, _ := newTestTrading(t)
	alice := createUser(t, database, "alice", 100)
	bob := createUser(t, database, "bob", 100)

	updated, err := service.Deposit(context.Background(), alice.ID, decimal.RequireFromString("250.50"))
	if err != nil {
		t.Fatalf("Failed to deposit: %v", err)
	}
	if !updated.Cash.Equal(decimal.RequireFromString("350.50")) {
		t.Errorf("Expected cash 350.50, got %s", updated.Cash)
	}

	var bobAfter models.User
	database.First(&bobAfter, bob.ID)
	if !bobAfter.Cash.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected bob's cash untouched at 100, got %s", bobAfter.Cash)
	}

	// Deposits are not trade history
	var txnCount int64
	database.Model(&models.Transaction{}).Count(&txnCount)
	if txnCount != 0 {
		t.Errorf("Expected no transaction rows for a deposit, got %d", txnCount)
	}
}

func TestDepositRejectsNonPositive(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 100)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := service.Deposit(context.Background(), user.ID, amount)
		if apperr.KindOf(err) != apperr.Validation {
			t.Errorf("Expected Validation for amount %s, got %v", amount, err)
		}
	}

	var after models.User
	database.First(&after, user.ID)
	if !after.Cash.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected cash unchanged at 100, got %s", after.Cash)
	}
}

func TestHistoryOrderedAndScopedToUser(t *testing.T) {
	service, database, _ := newTestTrading(t)
	alice := createUser(t, database, "alice", 1000)
	bob := createUser(t, database, "bob", 1000)

	now := time.Now()
	rows := []models.Transaction{
		{UserID: alice.ID, Symbol: "NFLX", Shares: decimal.NewFromInt(1), Price: decimal.NewFromInt(10), Date: now.Add(-time.Hour)},
		{UserID: bob.ID, Symbol: "AAPL", Shares: decimal.NewFromInt(9), Price: decimal.NewFromInt(100), Date: now.Add(-30 * time.Minute)},
		{UserID: alice.ID, Symbol: "AAPL", Shares: decimal.NewFromInt(2), Price: decimal.NewFromInt(100), Date: now.Add(-2 * time.Hour)},
	}
	for i := range rows {
		if err := database.Create(&rows[i]).Error; err != nil {
			t.Fatalf("Failed to seed transaction: %v", err)
		}
	}

	history, err := service.History(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("Failed to fetch history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 rows for alice, got %d", len(history))
	}
	if history[0].Symbol != "AAPL" || history[1].Symbol != "NFLX" {
		t.Errorf("Expected ascending timestamp order AAPL then NFLX, got %s then %s",
			history[0].Symbol, history[1].Symbol)
	}
	for _, txn := range history {
		if txn.UserID != alice.ID {
			t.Errorf("Expected only alice's rows, got user %d", txn.UserID)
		}
	}
}

func TestPortfolioOrderedBySymbol(t *testing.T) {
	service, database, _ := newTestTrading(t)
	user := createUser(t, database, "alice", 10000)

	if _, err := service.Buy(context.Background(), user.ID, "NFLX", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("Failed to buy: %v", err)
	}
	if _, err := service.Buy(context.Background(), user.ID, "AAPL", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("Failed to buy: %v", err)
	}

	owner, holdings, err := service.Portfolio(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Failed to fetch portfolio: %v", err)
	}
	if !owner.Cash.Equal(decimal.NewFromInt(9890)) {
		t.Errorf("Expected cash 9890, got %s", owner.Cash)
	}
	if len(holdings) != 2 || holdings[0].Symbol != "AAPL" || holdings[1].Symbol != "NFLX" {
		t.Errorf("Expected holdings ordered AAPL, NFLX; got %+v", holdings)
	}
}

func TestQuoteClassifiesProviderErrors(t *testing.T) {
	service, _, quotes := newTestTrading(t)

	if _, err := service.Quote(context.Background(), "ZZZZ"); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Expected NotFound, got %v", err)
	}

	quotes.err = quote.ErrUnavailable
	if _, err := service.Quote(context.Background(), "AAPL"); apperr.KindOf(err) != apperr.Unavailable {
		t.Errorf("Expected Unavailable, got %v", err)
	}
}
