package saleshistory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/events"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/metrics"
)

// DefaultFetchLimit bounds the transaction list of one query.
const DefaultFetchLimit = 1000

// Filter is what the list and stats are queried with.
type Filter struct {
	Token         RangeToken          `json:"range"`
	Range         DateRange           `json:"date_range"`
	PaymentMethod *enum.PaymentMethod `json:"payment_method,omitempty"`
}

func (f Filter) sameQuery(other Filter) bool {
	if f.Range != other.Range {
		return false
	}
	if f.PaymentMethod == nil || other.PaymentMethod == nil {
		return f.PaymentMethod == nil && other.PaymentMethod == nil
	}
	return *f.PaymentMethod == *other.PaymentMethod
}

// State is the last applied result of the orchestrator. Transactions and
// Stats are replaced wholesale, never edited in place.
type State struct {
	Filter       Filter
	Transactions []entity.Transaction
	Stats        *entity.AggregateStats
	Version      uint64
	LoadedAt     time.Time
}

// NoticeLevel grades a notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a non-blocking message for the operator.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	FetchLimit   int
	FetchTimeout time.Duration
	Now          Clock
	// Location is the timezone of the filter's calendar dates.
	Location *time.Location
	// Reresolve re-expands a filter against the current clock before each
	// refresh, so symbolic ranges follow the calendar.
	Reresolve func(Filter) Filter
	// OnApply is called with the new state after every applied batch, in
	// apply order. filterChanged is set when the query itself changed.
	OnApply func(state State, filterChanged bool)
	// OnNotice receives partial-failure warnings.
	OnNotice func(Notice)
}

// Orchestrator fetches the transaction list and aggregate stats together
// and applies whatever succeeded. Superseded batches are not cancelled: the
// last batch to resolve wins.
type Orchestrator struct {
	backend Backend
	cfg     OrchestratorConfig

	mu        sync.Mutex
	state     State
	loaded    bool
	stopTimer func()
	sub       events.Subscription
	closed    bool
}

// NewOrchestrator creates an orchestrator over backend.
func NewOrchestrator(backend Backend, cfg OrchestratorConfig) *Orchestrator {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{backend: backend, cfg: cfg}
}

// Load issues both fetches for filter and waits for both to settle. It
// fails with ErrAllFetchesFailed only when neither succeeded, in which case
// nothing is applied.
func (o *Orchestrator) Load(ctx context.Context, filter Filter) error {
	if o.isClosed() {
		return ErrViewClosed
	}

	var (
		wg       sync.WaitGroup
		list     []entity.Transaction
		stats    *entity.AggregateStats
		listErr  error
		statsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		list, listErr = o.backend.FetchTransactionList(ctx, ListQuery{
			Range:         filter.Range,
			Location:      o.cfg.Location,
			PaymentMethod: filter.PaymentMethod,
			Limit:         o.cfg.FetchLimit,
		})
		recordFetch("list", listErr)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = o.backend.FetchAggregateStats(ctx, StatsQuery{Range: filter.Range, Location: o.cfg.Location})
		recordFetch("stats", statsErr)
	}()
	wg.Wait()

	if listErr != nil && statsErr != nil {
		return fmt.Errorf("%w: %w", ErrAllFetchesFailed, errors.Join(
			&FetchError{Op: "list", Err: listErr},
			&FetchError{Op: "stats", Err: statsErr},
		))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrViewClosed
	}

	changed := !o.loaded || !o.state.Filter.sameQuery(filter)
	next := o.state
	next.Filter = filter
	if listErr == nil {
		next.Transactions = list
	}
	if statsErr == nil {
		next.Stats = stats
	}
	next.Version++
	next.LoadedAt = o.cfg.Now()
	o.state = next
	o.loaded = true

	if listErr != nil {
		o.warn("Transactions could not be loaded; showing the last results.", &FetchError{Op: "list", Err: listErr})
	}
	if statsErr != nil {
		o.warn("Sales statistics could not be loaded; showing the last figures.", &FetchError{Op: "stats", Err: statsErr})
	}
	if o.cfg.OnApply != nil {
		o.cfg.OnApply(next, changed)
	}
	return nil
}

// Refresh reloads with the current filter, re-resolved when a Reresolve
// hook is set.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	filter := o.State().Filter
	if o.cfg.Reresolve != nil {
		filter = o.cfg.Reresolve(filter)
	}
	return o.Load(ctx, filter)
}

// State returns the last applied state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// EnableAutoRefresh reloads every interval until disabled or closed.
func (o *Orchestrator) EnableAutoRefresh(s RefreshScheduler, interval time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	if o.stopTimer != nil {
		o.stopTimer()
	}
	o.stopTimer = s.Every(interval, func() { o.backgroundRefresh("timer") })
}

// DisableAutoRefresh stops the interval reload.
func (o *Orchestrator) DisableAutoRefresh() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopTimer != nil {
		o.stopTimer()
		o.stopTimer = nil
	}
}

// AutoRefresh reports whether the interval reload is active.
func (o *Orchestrator) AutoRefresh() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopTimer != nil
}

// Subscribe reloads whenever a transaction is recorded on bus.
func (o *Orchestrator) Subscribe(bus events.Bus) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrViewClosed
	}
	if o.sub != nil {
		_ = o.sub.Unsubscribe()
	}
	sub, err := bus.Subscribe(func(_ context.Context, evt events.TransactionRecorded) {
		log.Debug().Str("reference", evt.Reference).Msg("transaction recorded, refreshing sales history")
		o.backgroundRefresh("event")
	})
	if err != nil {
		return err
	}
	o.sub = sub
	return nil
}

// Close releases the timer and the event subscription. Batches still in
// flight are dropped when they resolve.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	if o.stopTimer != nil {
		o.stopTimer()
		o.stopTimer = nil
	}
	if o.sub != nil {
		_ = o.sub.Unsubscribe()
		o.sub = nil
	}
}

func (o *Orchestrator) backgroundRefresh(trigger string) {
	if o.isClosed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.FetchTimeout)
	defer cancel()

	if err := o.Refresh(ctx); err != nil && !errors.Is(err, ErrViewClosed) {
		log.Error().Err(err).Str("trigger", trigger).Msg("sales history refresh failed")
	}
}

func (o *Orchestrator) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// warn is called with o.mu held.
func (o *Orchestrator) warn(message string, err error) {
	log.Warn().Err(err).Msg(message)
	if o.cfg.OnNotice != nil {
		o.cfg.OnNotice(Notice{Level: NoticeWarning, Message: message, At: o.cfg.Now()})
	}
}

func recordFetch(op string, err error) {
	if err != nil {
		metrics.RecordFetch(op, "error")
		return
	}
	metrics.RecordFetch(op, "ok")
}
