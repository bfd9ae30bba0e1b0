package models

import "github.com/shopspring/decimal"

// PortfolioSummary - what we send back for the dashboard header
type PortfolioSummary struct {
	TotalAssets       int             `json:"total_assets"`
	TotalTransactions int             `json:"total_transactions"`
	TotalInvested     decimal.Decimal `json:"total_invested"`
}

// AllocationItem is one asset type's share of a user's invested value
type AllocationItem struct {
	AssetType  AssetType       `json:"asset_type"`
	AssetCount int             `json:"asset_count"`
	TypeTotal  decimal.Decimal `json:"type_total"`
	Percentage float64         `json:"percentage"`
}

type AllocationResponse struct {
	Items []AllocationItem `json:"items"`
}
