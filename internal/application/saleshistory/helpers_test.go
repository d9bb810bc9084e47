package saleshistory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/pkg/printer"
	"github.com/shopspring/decimal"
)

var errUnreachable = errors.New("backend unreachable")

var refTime = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func txn(ref string, at time.Time, total string) entity.Transaction {
	return entity.Transaction{
		ID:            uuid.New(),
		Reference:     ref,
		CreatedAt:     at,
		Subtotal:      dec(total),
		Total:         dec(total),
		Profit:        decimal.Zero,
		PaymentMethod: enum.PaymentMethodCash,
	}
}

// fakeBackend serves canned data. Details listed in gates block until the
// gate is closed; entered receives the id once the call is in flight.
type fakeBackend struct {
	mu         sync.Mutex
	list       []entity.Transaction
	listErr    error
	stats      *entity.AggregateStats
	statsErr   error
	details    map[uuid.UUID]*entity.Transaction
	detailErrs map[uuid.UUID]error
	gates      map[uuid.UUID]chan struct{}
	entered    chan uuid.UUID
	profile    *entity.StoreProfile
	profileErr error
	listCalls  int
	lastQuery  ListQuery
	lastStats  StatsQuery
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		stats:      &entity.AggregateStats{},
		details:    make(map[uuid.UUID]*entity.Transaction),
		detailErrs: make(map[uuid.UUID]error),
		gates:      make(map[uuid.UUID]chan struct{}),
		entered:    make(chan uuid.UUID, 8),
	}
}

func (b *fakeBackend) setList(items []entity.Transaction, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.list, b.listErr = items, err
}

func (b *fakeBackend) setStats(stats *entity.AggregateStats, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats, b.statsErr = stats, err
}

func (b *fakeBackend) queries() (ListQuery, StatsQuery) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery, b.lastStats
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

func (b *fakeBackend) FetchTransactionList(_ context.Context, q ListQuery) ([]entity.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	b.lastQuery = q
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]entity.Transaction, len(b.list))
	copy(out, b.list)
	return out, nil
}

func (b *fakeBackend) FetchAggregateStats(_ context.Context, q StatsQuery) (*entity.AggregateStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastStats = q
	if b.statsErr != nil {
		return nil, b.statsErr
	}
	return b.stats, nil
}

func (b *fakeBackend) FetchTransactionDetail(_ context.Context, id uuid.UUID) (*entity.Transaction, error) {
	b.mu.Lock()
	gate := b.gates[id]
	b.mu.Unlock()

	select {
	case b.entered <- id:
	default:
	}
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.detailErrs[id]; err != nil {
		return nil, err
	}
	d, ok := b.details[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return d, nil
}

func (b *fakeBackend) FetchStoreProfile(_ context.Context) (*entity.StoreProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile, b.profileErr
}

// manualScheduler runs jobs only when fired.
type manualScheduler struct {
	mu   sync.Mutex
	jobs map[int]func()
	next int
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{jobs: make(map[int]func())}
}

func (s *manualScheduler) Every(_ time.Duration, job func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.jobs[id] = job
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.jobs, id)
	}
}

func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *manualScheduler) Fire() {
	s.mu.Lock()
	jobs := make([]func(), 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	for _, j := range jobs {
		j()
	}
}

// recordingPrinter captures jobs; err makes every job fail.
type recordingPrinter struct {
	mu   sync.Mutex
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Kind() printer.Kind { return printer.KindUSB }

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *recordingPrinter) Status(context.Context) printer.Status {
	return printer.Status{Kind: printer.KindUSB, Ready: p.err == nil}
}

func (p *recordingPrinter) Close() error { return nil }

func (p *recordingPrinter) Jobs() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobs
}
