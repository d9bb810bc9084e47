package repository

import (
	"context"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salesdesk-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetPaymentMethodTotals(ctx context.Context, tr domainRepo.TimeRange) ([]entity.PaymentMethodTotals, error) {
	var results []entity.PaymentMethodTotals

	err := r.db.WithContext(ctx).
		Model(&entity.Transaction{}).
		Select(`payment_method,
			COUNT(*) as count,
			COALESCE(SUM(total), 0) as revenue,
			COALESCE(SUM(profit), 0) as profit`).
		Scopes(NotVoided, CreatedWithin(tr)).
		Group("payment_method").
		Order("payment_method").
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}
