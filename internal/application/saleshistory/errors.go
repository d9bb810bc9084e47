package saleshistory

import (
	"errors"
	"fmt"
)

var (
	// ErrAllFetchesFailed means every fetch of a batch failed and nothing
	// was applied.
	ErrAllFetchesFailed = errors.New("sales history: all fetches failed")
	// ErrStaleResponse marks a detail response superseded by a newer load.
	ErrStaleResponse = errors.New("sales history: response superseded")
	// ErrPrintSurfaceUnavailable sends output to the download tier.
	ErrPrintSurfaceUnavailable = errors.New("sales history: print surface unavailable")
	// ErrNoDetailOpen is returned when a receipt is requested with no
	// transaction detail loaded.
	ErrNoDetailOpen = errors.New("sales history: no transaction detail open")
	// ErrInvalidRange rejects malformed or inverted date ranges.
	ErrInvalidRange = errors.New("sales history: invalid date range")
	// ErrTransactionNotFound is returned for an unknown transaction id.
	ErrTransactionNotFound = errors.New("sales history: transaction not found")
	// ErrViewClosed is returned by operations on a torn down view.
	ErrViewClosed = errors.New("sales history: view closed")
)

// FetchError is a failed backend call. Prior state is kept when it occurs.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sales history: fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
