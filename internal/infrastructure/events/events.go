// Package events carries domain events between the checkout side and the
// sales-history views.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrBusClosed is returned when publishing or subscribing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// TransactionRecorded announces that a sale was committed.
type TransactionRecorded struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Reference     string          `json:"reference"`
	Total         decimal.Decimal `json:"total"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// Handler receives a delivered event. It runs on its own goroutine.
type Handler func(ctx context.Context, evt TransactionRecorded)

// Subscription is released with Unsubscribe; calling it twice is harmless.
type Subscription interface {
	Unsubscribe() error
}

// Bus publishes and fans out TransactionRecorded events.
type Bus interface {
	Publish(ctx context.Context, evt TransactionRecorded) error
	Subscribe(handler Handler) (Subscription, error)
	Close() error
}
