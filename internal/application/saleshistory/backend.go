package saleshistory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salesdesk-api/internal/domain/repository"
)

// ListQuery selects transaction summaries. Location is the timezone the
// calendar dates of Range belong to; nil means the backend's own.
type ListQuery struct {
	Range         DateRange
	Location      *time.Location
	PaymentMethod *enum.PaymentMethod
	Limit         int
	Offset        int
}

// StatsQuery selects the aggregates of a date range.
type StatsQuery struct {
	Range    DateRange
	Location *time.Location
}

// Backend is the data source of the sales history views.
type Backend interface {
	FetchTransactionList(ctx context.Context, q ListQuery) ([]entity.Transaction, error)
	FetchAggregateStats(ctx context.Context, q StatsQuery) (*entity.AggregateStats, error)
	// FetchTransactionDetail returns the transaction with its line items.
	FetchTransactionDetail(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	// FetchStoreProfile may return (nil, nil) when no profile is set up.
	FetchStoreProfile(ctx context.Context) (*entity.StoreProfile, error)
}

// RepositoryBackend serves Backend from the gorm repositories.
type RepositoryBackend struct {
	transactions domainRepo.TransactionRepository
	analytics    domainRepo.AnalyticsRepository
	stores       domainRepo.StoreRepository
	loc          *time.Location
}

// NewRepositoryBackend creates a backend resolving calendar dates in loc.
func NewRepositoryBackend(
	transactions domainRepo.TransactionRepository,
	analytics domainRepo.AnalyticsRepository,
	stores domainRepo.StoreRepository,
	loc *time.Location,
) *RepositoryBackend {
	if loc == nil {
		loc = time.Local
	}
	return &RepositoryBackend{
		transactions: transactions,
		analytics:    analytics,
		stores:       stores,
		loc:          loc,
	}
}

func (b *RepositoryBackend) FetchTransactionList(ctx context.Context, q ListQuery) ([]entity.Transaction, error) {
	tr, err := q.Range.Bounds(b.location(q.Location))
	if err != nil {
		return nil, err
	}
	return b.transactions.List(ctx, &domainRepo.TransactionFilterParams{
		Range:         tr,
		PaymentMethod: q.PaymentMethod,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
}

func (b *RepositoryBackend) FetchAggregateStats(ctx context.Context, q StatsQuery) (*entity.AggregateStats, error) {
	tr, err := q.Range.Bounds(b.location(q.Location))
	if err != nil {
		return nil, err
	}
	rows, err := b.analytics.GetPaymentMethodTotals(ctx, tr)
	if err != nil {
		return nil, err
	}
	return entity.NewAggregateStats(rows), nil
}

func (b *RepositoryBackend) FetchTransactionDetail(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	tx, err := b.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return tx, nil
}

func (b *RepositoryBackend) FetchStoreProfile(ctx context.Context) (*entity.StoreProfile, error) {
	return b.stores.Get(ctx)
}

func (b *RepositoryBackend) location(loc *time.Location) *time.Location {
	if loc != nil {
		return loc
	}
	return b.loc
}
