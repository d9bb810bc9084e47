package saleshistory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/metrics"
)

// DetailFetcher loads one transaction detail at a time. Each Load takes a
// new token; a response is applied only if its token is still the latest,
// so a slow earlier load can never overwrite a later one.
type DetailFetcher struct {
	backend Backend
	token   atomic.Uint64

	mu      sync.Mutex
	current *entity.Transaction
	lastErr error
}

// NewDetailFetcher creates a fetcher with nothing open.
func NewDetailFetcher(backend Backend) *DetailFetcher {
	return &DetailFetcher{backend: backend}
}

// Load fetches id. A superseded response is discarded without touching
// state and reported as ErrStaleResponse. When the latest load fails the
// detail already open stays open; the failure is recorded and returned.
func (f *DetailFetcher) Load(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	token := f.token.Add(1)

	detail, err := f.backend.FetchTransactionDetail(ctx, id)
	recordFetch("detail", err)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.token.Load() != token {
		metrics.RecordStaleDiscard()
		log.Debug().Str("transaction_id", id.String()).Uint64("token", token).Msg("discarding superseded detail response")
		return nil, ErrStaleResponse
	}

	if err != nil {
		if !errors.Is(err, ErrTransactionNotFound) {
			err = &FetchError{Op: "detail", Err: err}
		}
		f.lastErr = err
		return nil, err
	}

	f.current = detail
	f.lastErr = nil
	return detail, nil
}

// Current returns the open detail and the error of the latest load.
func (f *DetailFetcher) Current() (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.lastErr
}

// Clear closes the detail and invalidates loads still in flight.
func (f *DetailFetcher) Clear() {
	f.token.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = nil
	f.lastErr = nil
}
