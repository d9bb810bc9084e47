package saleshistory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
)

// DefaultDebounce is the quiet period before a search query is applied.
const DefaultDebounce = 300 * time.Millisecond

// SortKey is a sortable column of the list.
type SortKey string

const (
	SortByTimestamp  SortKey = "timestamp"
	SortByIdentifier SortKey = "identifier"
	SortByTotal      SortKey = "total"
	SortByProfit     SortKey = "profit"
)

// ParseSortKey validates a sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByTimestamp, SortByIdentifier, SortByTotal, SortByProfit:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// SortDirection orders a SortSpec.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortSpec is the single active ordering of the list.
type SortSpec struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort shows the newest transactions first.
var DefaultSort = SortSpec{Key: SortByTimestamp, Direction: Descending}

// Select returns the spec after the operator picks key: the active key
// flips direction, any other key starts ascending.
func (s SortSpec) Select(key SortKey) SortSpec {
	if key == s.Key {
		if s.Direction == Ascending {
			return SortSpec{Key: key, Direction: Descending}
		}
		return SortSpec{Key: key, Direction: Ascending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

func compareBy(key SortKey, a, b *entity.Transaction) int {
	switch key {
	case SortByIdentifier:
		return strings.Compare(a.Reference, b.Reference)
	case SortByTotal:
		return a.Total.Cmp(b.Total)
	case SortByProfit:
		return a.Profit.Cmp(b.Profit)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// SortTransactions returns a sorted copy. Equal keys keep their input order
// in both directions.
func SortTransactions(items []entity.Transaction, spec SortSpec) []entity.Transaction {
	out := make([]entity.Transaction, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		c := compareBy(spec.Key, &out[i], &out[j])
		if spec.Direction == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Matches reports whether any of reference, customer name or customer
// phone contains query, ignoring case. An empty query matches everything.
func Matches(t *entity.Transaction, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	name, phone := t.Customer()
	for _, field := range []string{t.Reference, name, phone} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FilterTransactions keeps the matching transactions in order.
func FilterTransactions(items []entity.Transaction, query string) []entity.Transaction {
	out := make([]entity.Transaction, 0, len(items))
	for i := range items {
		if Matches(&items[i], query) {
			out = append(out, items[i])
		}
	}
	return out
}

// PageView is the visible state of the list.
type PageView struct {
	Items         []entity.Transaction   `json:"items"`
	Pagination    *pagination.Pagination `json:"pagination"`
	Sort          SortSpec               `json:"sort"`
	Query         string                 `json:"query"`
	PendingQuery  string                 `json:"pending_query,omitempty"`
	FilteredCount int                    `json:"filtered_count"`
}

// Pipeline turns the orchestrator's list into the visible page: debounced
// search, then stable sort, then fixed-size pages.
type Pipeline struct {
	mu        sync.Mutex
	source    []entity.Transaction
	query     string
	pending   string
	sort      SortSpec
	page      int
	derived   []entity.Transaction
	debouncer *Debouncer
}

// NewPipeline creates an empty pipeline with the given search debounce.
func NewPipeline(debounce time.Duration) *Pipeline {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Pipeline{
		sort:      DefaultSort,
		page:      1,
		derived:   []entity.Transaction{},
		debouncer: NewDebouncer(debounce),
	}
}

// SetSource replaces the list. A new query (range or payment method)
// returns to page 1; a plain refresh keeps the page, clamped.
func (p *Pipeline) SetSource(items []entity.Transaction, resetPage bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.source = items
	p.recompute()
	if resetPage {
		p.page = 1
	} else {
		p.page = pagination.ClampPage(p.page, p.totalPages())
	}
}

// SetQuery records query and applies it after the debounce period.
func (p *Pipeline) SetQuery(query string) {
	p.mu.Lock()
	p.pending = query
	p.mu.Unlock()

	p.debouncer.Trigger(func() { p.applyQuery(query) })
}

// FlushQuery applies a pending query immediately.
func (p *Pipeline) FlushQuery() bool {
	return p.debouncer.Flush()
}

func (p *Pipeline) applyQuery(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.query = query
	p.recompute()
	p.page = 1
}

// SelectSort applies the toggle rule for key and returns to page 1.
func (p *Pipeline) SelectSort(key SortKey) SortSpec {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sort = p.sort.Select(key)
	p.recompute()
	p.page = 1
	return p.sort
}

// SetPage moves to page, clamped to the available pages.
func (p *Pipeline) SetPage(page int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.page = pagination.ClampPage(page, p.totalPages())
	return p.page
}

// View returns the current page.
func (p *Pipeline) View() PageView {
	p.mu.Lock()
	defer p.mu.Unlock()

	pager := pagination.NewPagination(p.page, pagination.DefaultPerPage, int64(len(p.derived)))
	view := PageView{
		Items:         pagination.Slice(p.derived, pager.CurrentPage, pagination.DefaultPerPage),
		Pagination:    pager,
		Sort:          p.sort,
		Query:         p.query,
		FilteredCount: len(p.derived),
	}
	if p.pending != p.query {
		view.PendingQuery = p.pending
	}
	return view
}

// Visible returns every filtered and sorted transaction, across pages.
func (p *Pipeline) Visible() []entity.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]entity.Transaction, len(p.derived))
	copy(out, p.derived)
	return out
}

// Close cancels a pending search.
func (p *Pipeline) Close() {
	p.debouncer.Stop()
}

// recompute is called with p.mu held.
func (p *Pipeline) recompute() {
	p.derived = SortTransactions(FilterTransactions(p.source, p.query), p.sort)
}

func (p *Pipeline) totalPages() int {
	return pagination.TotalPages(int64(len(p.derived)), pagination.DefaultPerPage)
}
