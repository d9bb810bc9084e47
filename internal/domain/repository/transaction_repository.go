package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
)

// TimeRange bounds a query on created_at. From is inclusive, To exclusive;
// a nil bound leaves that side open.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// TransactionFilterParams contains filtering parameters for transaction queries
type TransactionFilterParams struct {
	Range         TimeRange
	PaymentMethod *enum.PaymentMethod
	Limit         int
	Offset        int
}

// TransactionRepository defines the interface for read access to recorded sales
type TransactionRepository interface {
	// List returns summaries newest first, without line items.
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, error)
	// GetByID returns the transaction with its line items in recorded order
	// and their products preloaded. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
}

// StoreRepository reads the store profile printed on receipts
type StoreRepository interface {
	// Get returns the store profile, or (nil, nil) when none was set up.
	Get(ctx context.Context) (*entity.StoreProfile, error)
}
