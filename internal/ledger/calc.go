// Package ledger keeps each asset's quantity and average price consistent
// with its transaction history and derives the per-user dashboard figures.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// StoragePlaces matches the NUMERIC(20,8) columns of the schema.
const StoragePlaces = 8

var hundred = decimal.NewFromInt(100)

// Aggregate is the derived state of one asset.
type Aggregate struct {
	Quantity     decimal.Decimal
	AveragePrice decimal.Decimal
}

// Equal compares by value, ignoring representation.
func (a Aggregate) Equal(b Aggregate) bool {
	return a.Quantity.Equal(b.Quantity) && a.AveragePrice.Equal(b.AveragePrice)
}

// Recalculate derives an asset's aggregate from its full transaction set.
//
// The average is the cost of all buys divided by the quantity bought; sells
// reduce the quantity only. A flat or short position has a zero average.
// Fees never enter the computation. The result does not depend on the order
// of txs.
func Recalculate(txs []models.Transaction) Aggregate {
	boughtQty := decimal.Zero
	boughtCost := decimal.Zero
	soldQty := decimal.Zero

	for _, t := range txs {
		switch t.TransactionType {
		case models.TransactionBuy:
			boughtQty = boughtQty.Add(t.Quantity)
			boughtCost = boughtCost.Add(t.Quantity.Mul(t.UnitPrice))
		case models.TransactionSell:
			soldQty = soldQty.Add(t.Quantity)
		}
	}

	net := boughtQty.Sub(soldQty)
	avg := decimal.Zero
	if net.IsPositive() && boughtQty.IsPositive() {
		avg = boughtCost.Div(boughtQty)
	}

	return Aggregate{
		Quantity:     net.Round(StoragePlaces),
		AveragePrice: avg.Round(StoragePlaces),
	}
}

// Holding is the slice of an active asset the aggregator needs.
type Holding struct {
	AssetType        models.AssetType
	Quantity         decimal.Decimal
	AveragePrice     decimal.Decimal
	TransactionCount int
}

// Invested is quantity times average price.
func (h Holding) Invested() decimal.Decimal {
	return h.Quantity.Mul(h.AveragePrice)
}

// Summarize totals a user's active holdings. No holdings yields the zero summary.
func Summarize(holdings []Holding) models.PortfolioSummary {
	s := models.PortfolioSummary{TotalInvested: decimal.Zero}
	for _, h := range holdings {
		s.TotalAssets++
		s.TotalTransactions += h.TransactionCount
		s.TotalInvested = s.TotalInvested.Add(h.Invested())
	}
	return s
}

// Allocate groups holdings by asset type and reports each group's share of
// the user's invested total, rounded to two places. When the total is zero
// every share is zero. Items are ordered by percentage, largest first, ties
// broken by asset type.
func Allocate(holdings []Holding) []models.AllocationItem {
	total := decimal.Zero
	groups := make(map[models.AssetType]*models.AllocationItem)
	for _, h := range holdings {
		inv := h.Invested()
		total = total.Add(inv)
		g, ok := groups[h.AssetType]
		if !ok {
			g = &models.AllocationItem{AssetType: h.AssetType, TypeTotal: decimal.Zero}
			groups[h.AssetType] = g
		}
		g.AssetCount++
		g.TypeTotal = g.TypeTotal.Add(inv)
	}

	items := make([]models.AllocationItem, 0, len(groups))
	for _, g := range groups {
		if !total.IsZero() {
			g.Percentage = g.TypeTotal.Div(total).Mul(hundred).Round(2).InexactFloat64()
		}
		items = append(items, *g)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Percentage != items[j].Percentage {
			return items[i].Percentage > items[j].Percentage
		}
		return items[i].AssetType < items[j].AssetType
	})
	return items
}
