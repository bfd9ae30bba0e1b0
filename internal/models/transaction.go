package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is "BUY" or "SELL"
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// Valid reports whether t is BUY or SELL.
func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Transaction represents a buy/sell event against one asset
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	AssetID         uuid.UUID       `json:"asset_id"`
	UserID          uuid.UUID       `json:"user_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Fees            decimal.Decimal `json:"fees"`
	Date            time.Time       `json:"date"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionCreate - what client sends to record a transaction
type TransactionCreate struct {
	AssetID         uuid.UUID       `json:"asset_id" binding:"required"`
	TransactionType TransactionType `json:"transaction_type" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Fees            decimal.Decimal `json:"fees"`
	Date            time.Time       `json:"date" binding:"required"`
	Notes           *string         `json:"notes"`
}

// TransactionUpdate carries a partial modification. Nil means unchanged.
// A non-nil AssetID moves the transaction to another asset.
type TransactionUpdate struct {
	AssetID         *uuid.UUID       `json:"asset_id"`
	TransactionType *TransactionType `json:"transaction_type"`
	Quantity        *decimal.Decimal `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	Fees            *decimal.Decimal `json:"fees"`
	Date            *time.Time       `json:"date"`
	Notes           *string          `json:"notes"`
}

// Apply copies the non-nil fields of u onto t.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.AssetID != nil {
		t.AssetID = *u.AssetID
	}
	if u.TransactionType != nil {
		t.TransactionType = *u.TransactionType
	}
	if u.Quantity != nil {
		t.Quantity = *u.Quantity
	}
	if u.UnitPrice != nil {
		t.UnitPrice = *u.UnitPrice
	}
	if u.Fees != nil {
		t.Fees = *u.Fees
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Notes != nil {
		t.Notes = u.Notes
	}
}
