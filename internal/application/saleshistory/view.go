package saleshistory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/events"
)

const maxNotices = 20

// Output sends a rendered receipt somewhere the operator can get it.
type Output interface {
	PrintOrDownload(ctx context.Context, r *Rendered, filenameHint string) (*Outcome, error)
}

// ViewConfig holds the collaborators and tuning shared by every view.
type ViewConfig struct {
	Backend   Backend
	Resolver  *Resolver
	Renderer  *Renderer
	Output    Output
	Bus       events.Bus
	Scheduler RefreshScheduler

	FetchLimit      int
	FetchTimeout    time.Duration
	Debounce        time.Duration
	AutoRefresh     bool
	RefreshInterval time.Duration
	ReceiptWidth    int
	Now             Clock
}

// Operator identifies who a view belongs to. Settings may be nil.
type Operator struct {
	UserID   uuid.UUID
	Cashier  string
	Settings *entity.UserSettings
}

// FilterRequest is an unresolved filter as entered by the operator.
type FilterRequest struct {
	Token         RangeToken
	Start         string
	End           string
	PaymentMethod *enum.PaymentMethod
}

// Snapshot is everything the sales history screen shows.
type Snapshot struct {
	SessionID   uuid.UUID              `json:"session_id"`
	Filter      Filter                 `json:"filter"`
	Page        PageView               `json:"page"`
	Stats       *entity.AggregateStats `json:"stats"`
	Notices     []Notice               `json:"notices"`
	AutoRefresh bool                   `json:"auto_refresh"`
	Version     uint64                 `json:"version"`
	LoadedAt    time.Time              `json:"loaded_at"`
	OpenDetail  *uuid.UUID             `json:"open_detail,omitempty"`
}

// View is one operator's sales history screen: orchestrated fetches, the
// list pipeline, the open detail and the receipt path.
type View struct {
	ID    uuid.UUID
	Owner uuid.UUID

	cfg          ViewConfig
	cashier      string
	receiptWidth int
	orchestrator *Orchestrator
	pipeline     *Pipeline
	detail       *DetailFetcher

	mu       sync.Mutex
	notices  []Notice
	lastUsed time.Time
	closed   bool
}

// OpenView creates a view and performs its first load. When that load
// fails entirely the view is torn down and the error returned.
func OpenView(ctx context.Context, cfg ViewConfig, op Operator, req FilterRequest) (*View, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Resolver == nil {
		cfg.Resolver = NewResolver(cfg.Now, nil, time.Sunday)
	}
	if cfg.Renderer == nil {
		cfg.Renderer = NewRenderer(cfg.Resolver.Location())
	}

	v := &View{
		ID:           uuid.New(),
		Owner:        op.UserID,
		cfg:          cfg,
		cashier:      op.Cashier,
		receiptWidth: cfg.ReceiptWidth,
		pipeline:     NewPipeline(cfg.Debounce),
		detail:       NewDetailFetcher(cfg.Backend),
		lastUsed:     cfg.Now(),
	}
	autoRefresh := cfg.AutoRefresh
	if s := op.Settings; s != nil {
		autoRefresh = autoRefresh && s.AutoRefresh
		if s.ReceiptWidth != 0 {
			v.receiptWidth = s.ReceiptWidth
		}
	}

	v.orchestrator = NewOrchestrator(cfg.Backend, OrchestratorConfig{
		FetchLimit:   cfg.FetchLimit,
		FetchTimeout: cfg.FetchTimeout,
		Now:          cfg.Now,
		Location:     cfg.Resolver.Location(),
		Reresolve:    v.reresolve,
		OnApply: func(state State, filterChanged bool) {
			v.pipeline.SetSource(state.Transactions, filterChanged)
		},
		OnNotice: v.addNotice,
	})

	if err := v.SetFilter(ctx, req); err != nil {
		v.Close()
		return nil, err
	}

	if cfg.Bus != nil {
		if err := v.orchestrator.Subscribe(cfg.Bus); err != nil {
			log.Warn().Err(err).Str("session_id", v.ID.String()).Msg("event refresh unavailable")
		}
	}
	if autoRefresh && cfg.Scheduler != nil && cfg.RefreshInterval > 0 {
		v.orchestrator.EnableAutoRefresh(cfg.Scheduler, cfg.RefreshInterval)
	}
	return v, nil
}

// ResolveFilter expands req against the view's clock and validates custom
// bounds.
func (v *View) ResolveFilter(req FilterRequest) (Filter, error) {
	token := req.Token
	if token == "" {
		token = RangeToday
	}
	r := v.cfg.Resolver.Resolve(token, req.Start, req.End)
	if token == RangeCustom {
		if err := r.Validate(); err != nil {
			return Filter{}, err
		}
	}
	if req.PaymentMethod != nil && !req.PaymentMethod.IsValid() {
		return Filter{}, fmt.Errorf("unknown payment method %q", *req.PaymentMethod)
	}
	return Filter{Token: token, Range: r, PaymentMethod: req.PaymentMethod}, nil
}

// reresolve moves a symbolic range to the current day. Custom ranges are
// kept as entered.
func (v *View) reresolve(f Filter) Filter {
	if f.Token == "" || f.Token == RangeCustom {
		return f
	}
	f.Range = v.cfg.Resolver.Resolve(f.Token, "", "")
	return f
}

// SetFilter resolves req and reloads list and stats.
func (v *View) SetFilter(ctx context.Context, req FilterRequest) error {
	if err := v.touch(); err != nil {
		return err
	}
	filter, err := v.ResolveFilter(req)
	if err != nil {
		return err
	}
	return v.orchestrator.Load(ctx, filter)
}

// Refresh reloads with the current filter.
func (v *View) Refresh(ctx context.Context) error {
	if err := v.touch(); err != nil {
		return err
	}
	return v.orchestrator.Refresh(ctx)
}

// Search sets the free-text query; it applies after the debounce period.
func (v *View) Search(query string) error {
	if err := v.touch(); err != nil {
		return err
	}
	v.pipeline.SetQuery(query)
	return nil
}

// FlushSearch applies a pending query immediately.
func (v *View) FlushSearch() {
	v.pipeline.FlushQuery()
}

// Sort selects key with toggle semantics.
func (v *View) Sort(key SortKey) (SortSpec, error) {
	if err := v.touch(); err != nil {
		return SortSpec{}, err
	}
	return v.pipeline.SelectSort(key), nil
}

// GoToPage moves to page, clamped.
func (v *View) GoToPage(page int) (int, error) {
	if err := v.touch(); err != nil {
		return 0, err
	}
	return v.pipeline.SetPage(page), nil
}

// SetAutoRefresh toggles the interval reload.
func (v *View) SetAutoRefresh(on bool) error {
	if err := v.touch(); err != nil {
		return err
	}
	if !on {
		v.orchestrator.DisableAutoRefresh()
		return nil
	}
	if v.cfg.Scheduler != nil && v.cfg.RefreshInterval > 0 {
		v.orchestrator.EnableAutoRefresh(v.cfg.Scheduler, v.cfg.RefreshInterval)
	}
	return nil
}

// Snapshot returns the current screen and drains pending notices.
func (v *View) Snapshot() (*Snapshot, error) {
	if err := v.touch(); err != nil {
		return nil, err
	}

	state := v.orchestrator.State()
	snap := &Snapshot{
		SessionID:   v.ID,
		Filter:      state.Filter,
		Page:        v.pipeline.View(),
		Stats:       state.Stats,
		AutoRefresh: v.orchestrator.AutoRefresh(),
		Version:     state.Version,
		LoadedAt:    state.LoadedAt,
		Notices:     v.drainNotices(),
	}
	if detail, _ := v.detail.Current(); detail != nil {
		id := detail.ID
		snap.OpenDetail = &id
	}
	return snap, nil
}

// Visible returns the filtered and sorted list across all pages.
func (v *View) Visible() ([]entity.Transaction, error) {
	if err := v.touch(); err != nil {
		return nil, err
	}
	return v.pipeline.Visible(), nil
}

// Export writes the filtered and sorted list as a workbook.
func (v *View) Export() ([]byte, error) {
	items, err := v.Visible()
	if err != nil {
		return nil, err
	}
	return ExportXLSX(items, v.cfg.Resolver.Location())
}

// OpenDetail loads id with stale-response protection. superseded is set
// when a newer load replaced this one; the returned detail is then the
// currently open one, if any.
func (v *View) OpenDetail(ctx context.Context, id uuid.UUID) (detail *entity.Transaction, superseded bool, err error) {
	if err := v.touch(); err != nil {
		return nil, false, err
	}
	detail, err = v.detail.Load(ctx, id)
	if errors.Is(err, ErrStaleResponse) {
		current, _ := v.detail.Current()
		return current, true, nil
	}
	return detail, false, err
}

// CloseDetail closes the open detail and drops loads in flight.
func (v *View) CloseDetail() {
	v.detail.Clear()
}

// RenderReceipt composes and lays out the receipt of the open detail. A
// store profile that cannot be fetched leaves the header empty.
func (v *View) RenderReceipt(ctx context.Context) (*Rendered, *entity.ReceiptDocument, error) {
	if err := v.touch(); err != nil {
		return nil, nil, err
	}
	detail, _ := v.detail.Current()
	if detail == nil {
		return nil, nil, ErrNoDetailOpen
	}

	profile, err := v.cfg.Backend.FetchStoreProfile(ctx)
	recordFetch("store_profile", err)
	if err != nil {
		log.Warn().Err(err).Msg("store profile unavailable, printing without header")
		v.addNotice(Notice{Level: NoticeWarning, Message: "Store details could not be loaded; the receipt has no header.", At: v.cfg.Now()})
		profile = nil
	}

	doc := Compose(detail, profile, v.cashier)
	return v.cfg.Renderer.Render(doc, v.receiptWidth), doc, nil
}

// PrintReceipt renders the open detail and hands it to the output tiers.
func (v *View) PrintReceipt(ctx context.Context) (*Outcome, error) {
	rendered, doc, err := v.RenderReceipt(ctx)
	if err != nil {
		return nil, err
	}
	outcome, err := v.cfg.Output.PrintOrDownload(ctx, rendered, "receipt-"+doc.Reference)
	if err != nil {
		return nil, err
	}
	if outcome.Notice != nil {
		v.addNotice(*outcome.Notice)
	}
	return outcome, nil
}

// LastUsed is when the view was last touched by its operator.
func (v *View) LastUsed() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// Close tears the view down: timer, subscription, debounce and detail.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.orchestrator.Close()
	v.pipeline.Close()
	v.detail.Clear()
}

func (v *View) touch() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}
	v.lastUsed = v.cfg.Now()
	return nil
}

func (v *View) addNotice(n Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.notices = append(v.notices, n)
	if len(v.notices) > maxNotices {
		v.notices = v.notices[len(v.notices)-maxNotices:]
	}
}

func (v *View) drainNotices() []Notice {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := v.notices
	v.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
