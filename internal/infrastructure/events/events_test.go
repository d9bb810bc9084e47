package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_Deliver(t *testing.T) {
	bus := NewMemoryBus()
	got := make(chan TransactionRecorded, 2)

	sub, err := bus.Subscribe(func(_ context.Context, evt TransactionRecorded) { got <- evt })
	require.NoError(t, err)

	evt := TransactionRecorded{TransactionID: uuid.New(), Reference: "TX-1"}
	require.NoError(t, bus.Publish(context.Background(), evt))

	select {
	case e := <-got:
		assert.Equal(t, "TX-1", e.Reference)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 0, bus.Subscribers())

	require.NoError(t, bus.Publish(context.Background(), evt))
	select {
	case <-got:
		t.Fatal("delivered after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_Closed(t *testing.T) {
	bus := NewMemoryBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), TransactionRecorded{}), ErrBusClosed)
	_, err := bus.Subscribe(func(context.Context, TransactionRecorded) {})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestEventCodec(t *testing.T) {
	evt := TransactionRecorded{
		TransactionID: uuid.New(),
		Reference:     "TX-42",
		Total:         decimal.RequireFromString("108.00"),
		RecordedAt:    time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
	}

	payload, err := encodeEvent(evt)
	require.NoError(t, err)

	decoded, err := decodeEvent(string(payload))
	require.NoError(t, err)
	assert.Equal(t, evt.TransactionID, decoded.TransactionID)
	assert.True(t, evt.Total.Equal(decoded.Total))
	assert.True(t, evt.RecordedAt.Equal(decoded.RecordedAt))

	_, err = decodeEvent("{not json")
	assert.Error(t, err)
}
