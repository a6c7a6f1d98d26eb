package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alexbto/stonks/internal/apperr"
	"github.com/alexbto/stonks/internal/models"
	"github.com/alexbto/stonks/internal/quote"
)

// TradingService defines the interface for portfolio mutations and reads.
// Buy, Sell and Deposit each run as a single storage transaction: either all
// of the cash, history and holding writes commit, or none do.
type TradingService interface {
	Quote(ctx context.Context, symbol string) (*quote.Quote, error)
	Buy(ctx context.Context, userID uint, symbol string, shares decimal.Decimal) (models.Transaction, error)
	Sell(ctx context.Context, userID uint, symbol string, shares decimal.Decimal) (models.Transaction, error)
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (models.User, error)
	Portfolio(ctx context.Context, userID uint) (models.User, []models.Holding, error)
	History(ctx context.Context, userID uint) ([]models.Transaction, error)
}

// tradingService implements the TradingService interface
type tradingService struct {
	db     *gorm.DB
	quotes quote.Provider
}

// NewTradingService creates a new trading service
func NewTradingService(db *gorm.DB, quotes quote.Provider) TradingService {
	return &tradingService{
		db:     db,
		quotes: quotes,
	}
}

// lookup resolves a quote and classifies provider failures.
func (s *tradingService) lookup(ctx context.Context, symbol string) (*quote.Quote, error) {
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "invalid symbol", err)
		}
		return nil, apperr.Wrap(apperr.Unavailable, "quote service unavailable", err)
	}
	return q, nil
}

// Quote resolves the current quote for symbol. No state is mutated.
func (s *tradingService) Quote(ctx context.Context, symbol string) (*quote.Quote, error) {
	return s.lookup(ctx, symbol)
}

// Buy purchases shares of symbol at the current quoted price. The buy is
// rejected unless the user's cash covers the full cost, price times shares.
func (s *tradingService) Buy(ctx context.Context, userID uint, symbol string, shares decimal.Decimal) (models.Transaction, error) {
	if !shares.IsPositive() {
		return models.Transaction{}, apperr.New(apperr.Validation, "shares must be a positive number")
	}

	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return models.Transaction{}, err
	}
	price := decimal.NewFromFloat(q.Price)
	cost := price.Mul(shares)

	txn := models.Transaction{
		UserID: userID,
		Symbol: q.Symbol,
		Shares: shares,
		Price:  price,
		Date:   time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if user.Cash.LessThan(cost) {
			return apperr.New(apperr.InsufficientFunds, "not enough cash")
		}

		if err := tx.Model(&user).Update("cash", user.Cash.Sub(cost)).Error; err != nil {
			return err
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		var holding models.Holding
		result := tx.Where("user_id = ? AND symbol = ?", userID, q.Symbol).First(&holding)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return tx.Create(&models.Holding{
				UserID: userID,
				Symbol: q.Symbol,
				Name:   q.Name,
				Shares: shares,
			}).Error
		}
		if result.Error != nil {
			return result.Error
		}
		return tx.Model(&holding).Update("shares", holding.Shares.Add(shares)).Error
	})
	if err != nil {
		return models.Transaction{}, err
	}

	return txn, nil
}

// Sell disposes of shares of symbol at the current quoted price. Selling a
// position down to exactly zero deletes the holding row for this user and
// symbol only.
func (s *tradingService) Sell(ctx context.Context, userID uint, symbol string, shares decimal.Decimal) (models.Transaction, error) {
	if !shares.IsPositive() {
		return models.Transaction{}, apperr.New(apperr.Validation, "shares must be a positive number")
	}

	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return models.Transaction{}, err
	}
	price := decimal.NewFromFloat(q.Price)
	proceeds := price.Mul(shares)

	txn := models.Transaction{
		UserID: userID,
		Symbol: q.Symbol,
		Shares: shares.Neg(),
		Price:  price,
		Date:   time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding models.Holding
		result := tx.Where("user_id = ? AND symbol = ?", userID, q.Symbol).First(&holding)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) || (result.Error == nil && shares.GreaterThan(holding.Shares)) {
			return apperr.New(apperr.InsufficientShares, "you own fewer shares than you're trying to sell")
		}
		if result.Error != nil {
			return result.Error
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update("cash", user.Cash.Add(proceeds)).Error; err != nil {
			return err
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		remaining := holding.Shares.Sub(shares)
		if remaining.IsZero() {
			return tx.Delete(&holding).Error
		}
		return tx.Model(&holding).Update("shares", remaining).Error
	})
	if err != nil {
		return models.Transaction{}, err
	}

	return txn, nil
}

// Deposit adds amount to the user's cash balance and returns the updated
// user. Deposits are not recorded in the trade history.
func (s *tradingService) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (models.User, error) {
	if !amount.IsPositive() {
		return models.User{}, apperr.New(apperr.Validation, "funds must be a positive number")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		user.Cash = user.Cash.Add(amount)
		return tx.Model(&user).Update("cash", user.Cash).Error
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Portfolio returns the user's cash and holdings ordered by symbol.
func (s *tradingService) Portfolio(ctx context.Context, userID uint) (models.User, []models.Holding, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.User{}, nil, err
	}

	var holdings []models.Holding
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("symbol asc").
		Find(&holdings)
	if result.Error != nil {
		return models.User{}, nil, result.Error
	}

	return user, holdings, nil
}

// History returns the user's transactions ordered by timestamp ascending.
func (s *tradingService) History(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date asc").
		Find(&txns)
	return txns, result.Error
}
