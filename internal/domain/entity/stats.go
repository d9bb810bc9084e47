package entity

import (
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// PaymentMethodTotals is one grouped row of the aggregate query.
type PaymentMethodTotals struct {
	PaymentMethod enum.PaymentMethod
	Count         int64
	Revenue       decimal.Decimal
	Profit        decimal.Decimal
}

// AggregateStats summarises the non-voided transactions of a date range
type AggregateStats struct {
	TotalRevenue     decimal.Decimal                        `json:"total_revenue"`
	TransactionCount int64                                  `json:"transaction_count"`
	AverageTicket    decimal.Decimal                        `json:"average_ticket"`
	TotalProfit      decimal.Decimal                        `json:"total_profit"`
	ProfitMargin     decimal.Decimal                        `json:"profit_margin"`
	ByPaymentMethod  map[enum.PaymentMethod]decimal.Decimal `json:"by_payment_method"`
}

// NewAggregateStats folds per-payment-method rows into range totals.
// ProfitMargin is a percentage of revenue, rounded to two places.
func NewAggregateStats(rows []PaymentMethodTotals) *AggregateStats {
	stats := &AggregateStats{
		TotalRevenue:    decimal.Zero,
		AverageTicket:   decimal.Zero,
		TotalProfit:     decimal.Zero,
		ProfitMargin:    decimal.Zero,
		ByPaymentMethod: make(map[enum.PaymentMethod]decimal.Decimal, len(rows)),
	}

	for _, r := range rows {
		stats.TransactionCount += r.Count
		stats.TotalRevenue = stats.TotalRevenue.Add(r.Revenue)
		stats.TotalProfit = stats.TotalProfit.Add(r.Profit)
		stats.ByPaymentMethod[r.PaymentMethod] = stats.ByPaymentMethod[r.PaymentMethod].Add(r.Revenue)
	}

	if stats.TransactionCount > 0 {
		stats.AverageTicket = stats.TotalRevenue.Div(decimal.NewFromInt(stats.TransactionCount)).Round(2)
	}
	if stats.TotalRevenue.IsPositive() {
		stats.ProfitMargin = stats.TotalProfit.Div(stats.TotalRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return stats
}
