package saleshistory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/events"
	"github.com/sangkips/salesdesk-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type viewHarness struct {
	backend *fakeBackend
	bus     *events.MemoryBus
	sched   *manualScheduler
	printer *recordingPrinter
	cfg     ViewConfig
}

func newViewHarness(t *testing.T) *viewHarness {
	t.Helper()
	h := &viewHarness{
		backend: newFakeBackend(),
		bus:     events.NewMemoryBus(),
		sched:   newManualScheduler(),
		printer: &recordingPrinter{err: printer.ErrNotConfigured},
	}
	dispatcher := NewDispatcher(h.printer, printer.NewSpoolDir(t.TempDir()), time.Millisecond)
	t.Cleanup(dispatcher.Close)

	h.cfg = ViewConfig{
		Backend:         h.backend,
		Resolver:        NewResolver(fixedClock(refTime), time.UTC, time.Sunday),
		Renderer:        NewRenderer(time.UTC),
		Output:          dispatcher,
		Bus:             h.bus,
		Scheduler:       h.sched,
		Debounce:        time.Hour,
		AutoRefresh:     true,
		RefreshInterval: 5 * time.Minute,
		ReceiptWidth:    printer.Width58mm,
		Now:             fixedClock(refTime),
	}
	return h
}

func TestView_OpenAndSnapshot(t *testing.T) {
	h := newViewHarness(t)
	h.backend.setList(numbered(47), nil)
	h.backend.setStats(&entity.AggregateStats{TransactionCount: 47}, nil)

	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New(), Cashier: "Mary"}, FilterRequest{Token: RangeMonth})
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, DateRange{Start: "2024-03-01", End: "2024-03-15"}, h.backend.lastQuery.Range)
	assert.Equal(t, 1, h.sched.Active())
	assert.Equal(t, 1, h.bus.Subscribers())

	_, err = v.GoToPage(2)
	require.NoError(t, err)

	snap, err := v.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, v.ID, snap.SessionID)
	assert.Equal(t, []int{1, 2, 3}, snap.Page.Pagination.Links)
	assert.Equal(t, 2, snap.Page.Pagination.CurrentPage)
	assert.Equal(t, int64(47), snap.Stats.TransactionCount)
	assert.True(t, snap.AutoRefresh)
	assert.Empty(t, snap.Notices)
}

func TestView_RangeChangeResetsPage(t *testing.T) {
	h := newViewHarness(t)
	h.backend.setList(numbered(47), nil)
	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{Token: RangeMonth})
	require.NoError(t, err)
	defer v.Close()

	_, _ = v.GoToPage(3)
	require.NoError(t, v.Refresh(context.Background()))
	snap, _ := v.Snapshot()
	assert.Equal(t, 3, snap.Page.Pagination.CurrentPage, "refresh keeps the page")

	require.NoError(t, v.SetFilter(context.Background(), FilterRequest{Token: RangeYear}))
	snap, _ = v.Snapshot()
	assert.Equal(t, 1, snap.Page.Pagination.CurrentPage)
	assert.Equal(t, RangeYear, snap.Filter.Token)
}

func TestView_InvalidCustomRange(t *testing.T) {
	h := newViewHarness(t)
	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()

	err = v.SetFilter(context.Background(), FilterRequest{Token: RangeCustom, Start: "2024-03-10", End: "2024-03-01"})
	assert.ErrorIs(t, err, ErrInvalidRange)

	require.NoError(t, v.SetFilter(context.Background(), FilterRequest{Token: RangeCustom, Start: "2024-03-01"}))
	assert.Equal(t, DateRange{Start: "2024-03-01"}, h.backend.lastQuery.Range)
}

func TestView_RefreshFollowsTheCalendar(t *testing.T) {
	h := newViewHarness(t)
	clock := &movableClock{now: time.Date(2024, 3, 15, 23, 58, 0, 0, time.UTC)}
	h.cfg.Now = clock.Now
	h.cfg.Resolver = NewResolver(clock.Now, time.UTC, time.Sunday)

	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{Token: RangeToday})
	require.NoError(t, err)
	defer v.Close()

	list, _ := h.backend.queries()
	assert.Equal(t, DateRange{Start: "2024-03-15", End: "2024-03-15"}, list.Range)

	clock.Advance(5 * time.Minute)
	h.sched.Fire()

	list, stats := h.backend.queries()
	assert.Equal(t, DateRange{Start: "2024-03-16", End: "2024-03-16"}, list.Range)
	assert.Equal(t, list.Range, stats.Range)

	require.NoError(t, v.Refresh(context.Background()))
	snap, err := v.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", snap.Filter.Range.End)

	require.NoError(t, v.SetFilter(context.Background(), FilterRequest{Token: RangeCustom, Start: "2024-03-01", End: "2024-03-10"}))
	clock.Advance(24 * time.Hour)
	h.sched.Fire()

	list, _ = h.backend.queries()
	assert.Equal(t, DateRange{Start: "2024-03-01", End: "2024-03-10"}, list.Range, "custom ranges are kept as entered")
}

func TestView_QueriesCarryTheViewTimezone(t *testing.T) {
	h := newViewHarness(t)
	auckland := time.FixedZone("NZDT", 13*60*60)
	at := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	h.cfg.Resolver = NewResolver(fixedClock(at), auckland, time.Sunday)

	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{Token: RangeToday})
	require.NoError(t, err)
	defer v.Close()

	list, stats := h.backend.queries()
	assert.Equal(t, DateRange{Start: "2024-03-16", End: "2024-03-16"}, list.Range)
	assert.Same(t, auckland, list.Location)
	assert.Same(t, auckland, stats.Location)
}

func TestView_OpenFailsWhenEverythingFails(t *testing.T) {
	h := newViewHarness(t)
	h.backend.setList(nil, errUnreachable)
	h.backend.setStats(nil, errUnreachable)

	_, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})

	assert.ErrorIs(t, err, ErrAllFetchesFailed)
	assert.Equal(t, 0, h.sched.Active())
	assert.Equal(t, 0, h.bus.Subscribers())
}

func TestView_PartialFailureNotices(t *testing.T) {
	h := newViewHarness(t)
	h.backend.setStats(nil, errUnreachable)
	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()

	snap, err := v.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Notices, 1)
	assert.Equal(t, NoticeWarning, snap.Notices[0].Level)

	again, _ := v.Snapshot()
	assert.Empty(t, again.Notices, "notices are surfaced once")
}

func TestView_UserSettings(t *testing.T) {
	h := newViewHarness(t)
	op := Operator{UserID: uuid.New(), Settings: &entity.UserSettings{AutoRefresh: false, ReceiptWidth: printer.Width80mm}}

	v, err := OpenView(context.Background(), h.cfg, op, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, 0, h.sched.Active())

	detail := detailFixture()
	h.backend.details[detail.ID] = detail
	_, _, err = v.OpenDetail(context.Background(), detail.ID)
	require.NoError(t, err)

	rendered, _, err := v.RenderReceipt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, printer.Width80mm, rendered.Width)
}

func TestView_ReceiptFlow(t *testing.T) {
	h := newViewHarness(t)
	h.backend.profile = profileFixture()
	detail := detailFixture()
	h.backend.details[detail.ID] = detail

	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New(), Cashier: "Mary"}, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()

	_, err = v.PrintReceipt(context.Background())
	assert.ErrorIs(t, err, ErrNoDetailOpen)

	got, superseded, err := v.OpenDetail(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.False(t, superseded)
	assert.Equal(t, detail.ID, got.ID)

	rendered, doc, err := v.RenderReceipt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", doc.Header.StoreName)
	assert.Contains(t, rendered.Text(), "Mary")

	outcome, err := v.PrintReceipt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TierDownload, outcome.Tier)
	assert.Equal(t, "receipt-TX-0001.pdf", outcome.Filename)

	snap, _ := v.Snapshot()
	require.NotNil(t, snap.OpenDetail)
	assert.Equal(t, detail.ID, *snap.OpenDetail)
	require.Len(t, snap.Notices, 1)
	assert.Equal(t, NoticeInfo, snap.Notices[0].Level)

	v.CloseDetail()
	_, _, err = v.RenderReceipt(context.Background())
	assert.ErrorIs(t, err, ErrNoDetailOpen)
}

func TestView_ReceiptWithoutProfile(t *testing.T) {
	h := newViewHarness(t)
	h.backend.profileErr = errUnreachable
	detail := detailFixture()
	h.backend.details[detail.ID] = detail

	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()
	_, _, err = v.OpenDetail(context.Background(), detail.ID)
	require.NoError(t, err)

	rendered, doc, err := v.RenderReceipt(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Header.StoreName)
	assert.Contains(t, rendered.Text(), "Total")

	snap, _ := v.Snapshot()
	assert.Len(t, snap.Notices, 1)
}

func TestView_SupersededDetail(t *testing.T) {
	h := newViewHarness(t)
	a, b := txn("A", refTime, "1.00"), txn("B", refTime, "2.00")
	h.backend.details[a.ID] = &a
	h.backend.details[b.ID] = &b
	gate := make(chan struct{})
	h.backend.gates[a.ID] = gate

	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()

	type result struct {
		detail     *entity.Transaction
		superseded bool
		err        error
	}
	done := make(chan result, 1)
	go func() {
		d, s, err := v.OpenDetail(context.Background(), a.ID)
		done <- result{d, s, err}
	}()
	waitEntered(t, h.backend, a.ID)

	_, _, err = v.OpenDetail(context.Background(), b.ID)
	require.NoError(t, err)
	close(gate)

	res := <-done
	require.NoError(t, res.err)
	assert.True(t, res.superseded)
	require.NotNil(t, res.detail)
	assert.Equal(t, "B", res.detail.Reference)
}

func TestView_SearchAndExport(t *testing.T) {
	h := newViewHarness(t)
	items := numbered(25)
	for _, i := range []int{1, 5, 9} {
		items[i].CustomerPhone = strPtr("0722 555 000")
	}
	h.backend.setList(items, nil)

	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.Search("555"))
	v.FlushSearch()

	visible, err := v.Visible()
	require.NoError(t, err)
	assert.Len(t, visible, 3)

	data, err := v.Export()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestView_Close(t *testing.T) {
	h := newViewHarness(t)
	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})
	require.NoError(t, err)

	v.Close()
	v.Close()

	assert.Equal(t, 0, h.sched.Active())
	assert.Equal(t, 0, h.bus.Subscribers())
	_, err = v.Snapshot()
	assert.ErrorIs(t, err, ErrViewClosed)
	assert.ErrorIs(t, v.Search("x"), ErrViewClosed)
}

func TestView_ToggleAutoRefresh(t *testing.T) {
	h := newViewHarness(t)
	v, err := OpenView(context.Background(), h.cfg, Operator{UserID: uuid.New()}, FilterRequest{})
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.SetAutoRefresh(false))
	assert.Equal(t, 0, h.sched.Active())
	require.NoError(t, v.SetAutoRefresh(true))
	assert.Equal(t, 1, h.sched.Active())
}
