package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType buckets assets for allocation reporting
type AssetType string

const (
	AssetTypeStock       AssetType = "STOCK"
	AssetTypeFII         AssetType = "FII"
	AssetTypeCrypto      AssetType = "CRYPTO"
	AssetTypeFixedIncome AssetType = "FIXED_INCOME"
	AssetTypeETF         AssetType = "ETF"
	AssetTypeRendaFixa   AssetType = "RENDA_FIXA"
	AssetTypeFund        AssetType = "FUND"
	AssetTypeBDR         AssetType = "BDR"
	AssetTypeOther       AssetType = "OTHER"
)

// AssetTypes lists every accepted asset type in schema order.
var AssetTypes = []AssetType{
	AssetTypeStock,
	AssetTypeFII,
	AssetTypeCrypto,
	AssetTypeFixedIncome,
	AssetTypeETF,
	AssetTypeRendaFixa,
	AssetTypeFund,
	AssetTypeBDR,
	AssetTypeOther,
}

// Valid reports whether t is one of AssetTypes.
func (t AssetType) Valid() bool {
	for _, v := range AssetTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Asset is a position held by exactly one user.
// Quantity and AveragePrice are derived from the asset's transactions.
type Asset struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Ticker       string          `json:"ticker"`
	Name         string          `json:"name"`
	AssetType    AssetType       `json:"asset_type"`
	Sector       *string         `json:"sector"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AssetCreate - what client sends to register an asset.
// Quantity and AveragePrice are only honoured here, as a seed.
type AssetCreate struct {
	Ticker       string           `json:"ticker" binding:"required,max=16"`
	Name         string           `json:"name" binding:"required,max=255"`
	AssetType    AssetType        `json:"asset_type" binding:"required"`
	Sector       *string          `json:"sector"`
	Quantity     *decimal.Decimal `json:"quantity"`
	AveragePrice *decimal.Decimal `json:"average_price"`
	IsActive     *bool            `json:"is_active"`
}

// AssetUpdate carries the user-editable asset fields. Nil means unchanged.
type AssetUpdate struct {
	Ticker    *string    `json:"ticker" binding:"omitempty,max=16"`
	Name      *string    `json:"name" binding:"omitempty,max=255"`
	AssetType *AssetType `json:"asset_type"`
	Sector    *string    `json:"sector"`
	IsActive  *bool      `json:"is_active"`
}

// Apply copies the non-nil fields of u onto a.
func (u AssetUpdate) Apply(a *Asset) {
	if u.Ticker != nil {
		a.Ticker = *u.Ticker
	}
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.AssetType != nil {
		a.AssetType = *u.AssetType
	}
	if u.Sector != nil {
		a.Sector = u.Sector
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
}
