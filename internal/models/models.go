package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder. Cash is the ledger: the single source of
// spendable funds, mutated only by buy, sell and deposit.
type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Username       string          `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string          `gorm:"column:hashed_password" json:"-"`
	Cash           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cash"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Holding is the aggregate share count a user owns of one symbol. A row
// exists only while shares is non-zero; selling a position down to zero
// removes it.
type Holding struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex:idx_holdings_user_symbol;not null" json:"userId"`
	Symbol    string          `gorm:"uniqueIndex:idx_holdings_user_symbol;not null" json:"symbol"`
	Name      string          `json:"name"`
	Shares    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"shares"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Transaction is one append-only trade record. Shares is signed: positive
// for a buy, negative for a sell.
type Transaction struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	UserID uint            `gorm:"index;not null" json:"userId"`
	Symbol string          `gorm:"not null" json:"symbol"`
	Shares decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"shares"`
	Price  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Date   time.Time       `gorm:"index" json:"date"`
}

// Message represents a WebSocket message
type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}
