package repository

import (
	"context"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
)

// AnalyticsRepository defines interface for analytics/aggregation queries
type AnalyticsRepository interface {
	// GetPaymentMethodTotals returns count, revenue and profit of the
	// non-voided transactions in the range, grouped by payment method.
	GetPaymentMethodTotals(ctx context.Context, r TimeRange) ([]entity.PaymentMethodTotals, error)
}
