package saleshistory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/metrics"
)

// Registry keeps the open views keyed by session id and closes views that
// were idle longer than the TTL.
type Registry struct {
	mu    sync.RWMutex
	views map[uuid.UUID]*View
	ttl   time.Duration
	now   Clock
	stop  chan struct{}
	once  sync.Once
}

// NewRegistry creates a registry. With a positive sweepInterval a
// background goroutine sweeps idle views until Close.
func NewRegistry(ttl, sweepInterval time.Duration, now Clock) *Registry {
	if now == nil {
		now = time.Now
	}
	r := &Registry{
		views: make(map[uuid.UUID]*View),
		ttl:   ttl,
		now:   now,
		stop:  make(chan struct{}),
	}
	if sweepInterval > 0 && ttl > 0 {
		go r.sweepLoop(sweepInterval)
	}
	return r
}

// Open creates a view for op and registers it.
func (r *Registry) Open(ctx context.Context, cfg ViewConfig, op Operator, req FilterRequest) (*View, error) {
	v, err := OpenView(ctx, cfg, op, req)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.views[v.ID] = v
	n := len(r.views)
	r.mu.Unlock()

	metrics.SetOpenViews(n)
	log.Info().Str("session_id", v.ID.String()).Str("user_id", op.UserID.String()).Msg("sales history session opened")
	return v, nil
}

// Get returns the view id when it belongs to owner.
func (r *Registry) Get(id, owner uuid.UUID) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.views[id]
	if !ok || v.Owner != owner {
		return nil, false
	}
	return v, true
}

// Close tears down and forgets view id of owner.
func (r *Registry) Close(id, owner uuid.UUID) bool {
	r.mu.Lock()
	v, ok := r.views[id]
	if !ok || v.Owner != owner {
		r.mu.Unlock()
		return false
	}
	delete(r.views, id)
	n := len(r.views)
	r.mu.Unlock()

	v.Close()
	metrics.SetOpenViews(n)
	return true
}

// Len reports the number of open views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Sweep closes views idle for longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*View
	for id, v := range r.views {
		if v.LastUsed().Before(cutoff) {
			idle = append(idle, v)
			delete(r.views, id)
		}
	}
	n := len(r.views)
	r.mu.Unlock()

	for _, v := range idle {
		v.Close()
		log.Debug().Str("session_id", v.ID.String()).Msg("idle sales history session closed")
	}
	if len(idle) > 0 {
		metrics.SetOpenViews(n)
	}
	return len(idle)
}

// Shutdown stops the sweeper and closes every view.
func (r *Registry) Shutdown() {
	r.once.Do(func() { close(r.stop) })

	r.mu.Lock()
	views := r.views
	r.views = make(map[uuid.UUID]*View)
	r.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
	metrics.SetOpenViews(0)
}

// sweepLoop periodically removes idle views
func (r *Registry) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
