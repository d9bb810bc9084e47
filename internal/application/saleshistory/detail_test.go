package saleshistory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadResult struct {
	id  uuid.UUID
	err error
}

func waitEntered(t *testing.T, b *fakeBackend, want uuid.UUID) {
	t.Helper()
	select {
	case got := <-b.entered:
		require.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("detail request was not issued")
	}
}

func TestDetailFetcher_LaterRequestWins(t *testing.T) {
	backend := newFakeBackend()
	a, b := txn("A", refTime, "1.00"), txn("B", refTime, "2.00")
	backend.details[a.ID] = &a
	backend.details[b.ID] = &b
	gate := make(chan struct{})
	backend.gates[a.ID] = gate

	f := NewDetailFetcher(backend)

	done := make(chan loadResult, 1)
	go func() {
		d, err := f.Load(context.Background(), a.ID)
		r := loadResult{err: err}
		if d != nil {
			r.id = d.ID
		}
		done <- r
	}()
	waitEntered(t, backend, a.ID)

	got, err := f.Load(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	// A resolves after B.
	close(gate)
	res := <-done
	assert.ErrorIs(t, res.err, ErrStaleResponse)

	current, lastErr := f.Current()
	require.NotNil(t, current)
	assert.Equal(t, b.ID, current.ID)
	assert.NoError(t, lastErr)
}

func TestDetailFetcher_LaterFailureWins(t *testing.T) {
	backend := newFakeBackend()
	a, b := txn("A", refTime, "1.00"), txn("B", refTime, "2.00")
	backend.details[a.ID] = &a
	backend.detailErrs[b.ID] = errUnreachable
	gate := make(chan struct{})
	backend.gates[a.ID] = gate

	f := NewDetailFetcher(backend)

	done := make(chan loadResult, 1)
	go func() {
		_, err := f.Load(context.Background(), a.ID)
		done <- loadResult{err: err}
	}()
	waitEntered(t, backend, a.ID)

	_, err := f.Load(context.Background(), b.ID)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "detail", fetchErr.Op)

	close(gate)
	assert.ErrorIs(t, (<-done).err, ErrStaleResponse)

	current, lastErr := f.Current()
	assert.Nil(t, current, "A's late success must not be applied")
	assert.ErrorIs(t, lastErr, errUnreachable)
}

func TestDetailFetcher_InOrder(t *testing.T) {
	backend := newFakeBackend()
	a := txn("A", refTime, "1.00")
	backend.details[a.ID] = &a
	f := NewDetailFetcher(backend)

	got, err := f.Load(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Reference)

	_, err = f.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	current, lastErr := f.Current()
	require.NotNil(t, current)
	assert.Equal(t, a.ID, current.ID)
	assert.ErrorIs(t, lastErr, ErrTransactionNotFound)
}

func TestDetailFetcher_FailureKeepsOpenDetail(t *testing.T) {
	backend := newFakeBackend()
	a, b := txn("A", refTime, "1.00"), txn("B", refTime, "2.00")
	backend.details[a.ID] = &a
	backend.detailErrs[b.ID] = errUnreachable
	f := NewDetailFetcher(backend)

	_, err := f.Load(context.Background(), a.ID)
	require.NoError(t, err)

	_, err = f.Load(context.Background(), b.ID)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))

	current, lastErr := f.Current()
	require.NotNil(t, current)
	assert.Equal(t, a.ID, current.ID)
	assert.ErrorIs(t, lastErr, errUnreachable)

	got, err := f.Load(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	_, lastErr = f.Current()
	assert.NoError(t, lastErr)
}

func TestDetailFetcher_ClearDropsInFlight(t *testing.T) {
	backend := newFakeBackend()
	a := txn("A", refTime, "1.00")
	backend.details[a.ID] = &a
	gate := make(chan struct{})
	backend.gates[a.ID] = gate
	f := NewDetailFetcher(backend)

	done := make(chan error, 1)
	go func() {
		_, err := f.Load(context.Background(), a.ID)
		done <- err
	}()
	waitEntered(t, backend, a.ID)

	f.Clear()
	close(gate)

	assert.ErrorIs(t, <-done, ErrStaleResponse)
	current, _ := f.Current()
	assert.Nil(t, current)
}
