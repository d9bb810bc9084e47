package saleshistory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/metrics"
	"github.com/sangkips/salesdesk-api/pkg/printer"
)

// DefaultCleanupDelay is how long a print surface outlives its print job.
const DefaultCleanupDelay = time.Second

// OutputTier names how a receipt left the system.
type OutputTier string

const (
	TierPrint    OutputTier = "print"
	TierDownload OutputTier = "download"
)

// Outcome is the observable result of PrintOrDownload. Document and
// Filename are set for the download tier only.
type Outcome struct {
	Tier        OutputTier `json:"tier"`
	Filename    string     `json:"filename,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Document    []byte     `json:"-"`
	Notice      *Notice    `json:"notice,omitempty"`
}

// Dispatcher sends rendered receipts to the printer through a spool
// surface, falling back to a PDF download when that is not possible.
type Dispatcher struct {
	printer      printer.Printer
	surfaces     printer.SurfaceFactory
	cleanupDelay time.Duration
	now          Clock

	mu      sync.Mutex
	pending map[printer.Surface]*time.Timer
}

// NewDispatcher creates a dispatcher. Surfaces are released cleanupDelay
// after each attempt, whatever its result.
func NewDispatcher(p printer.Printer, surfaces printer.SurfaceFactory, cleanupDelay time.Duration) *Dispatcher {
	if cleanupDelay <= 0 {
		cleanupDelay = DefaultCleanupDelay
	}
	return &Dispatcher{
		printer:      p,
		surfaces:     surfaces,
		cleanupDelay: cleanupDelay,
		now:          time.Now,
		pending:      make(map[printer.Surface]*time.Timer),
	}
}

// PrintOrDownload tries the print tier and falls back to the download tier.
// An error is returned only when both tiers failed.
func (d *Dispatcher) PrintOrDownload(ctx context.Context, r *Rendered, filenameHint string) (*Outcome, error) {
	err := d.print(ctx, r, filenameHint)
	if err == nil {
		metrics.RecordOutput(string(TierPrint))
		log.Info().Str("reference", r.Reference).Msg("receipt sent to printer")
		return &Outcome{Tier: TierPrint}, nil
	}

	log.Info().Err(err).Str("reference", r.Reference).Msg("print tier unavailable, preparing download")

	pdf, pdfErr := printer.PDF(r.Lines, r.Width)
	if pdfErr != nil {
		return nil, fmt.Errorf("receipt output failed: %w; download: %w", err, pdfErr)
	}

	metrics.RecordOutput(string(TierDownload))
	return &Outcome{
		Tier:        TierDownload,
		Filename:    printer.SafeFilename(filenameHint) + ".pdf",
		ContentType: "application/pdf",
		Document:    pdf,
		Notice: &Notice{
			Level:   NoticeInfo,
			Message: "Printer unavailable; the receipt was prepared as a download.",
			At:      d.now(),
		},
	}, nil
}

func (d *Dispatcher) print(ctx context.Context, r *Rendered, hint string) error {
	// Without a printer there is nothing to spool for.
	if d.printer.Kind() == printer.KindNone {
		return fmt.Errorf("%w: %w", ErrPrintSurfaceUnavailable, printer.ErrNotConfigured)
	}
	surface, err := d.surfaces.Create(hint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrintSurfaceUnavailable, err)
	}
	d.scheduleRelease(surface)

	if err := surface.Write(r.ESCPOS); err != nil {
		return fmt.Errorf("%w: %w", ErrPrintSurfaceUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPrintSurfaceUnavailable, err)
	}
	if err := printer.PrintSurface(ctx, d.printer, surface); err != nil {
		return fmt.Errorf("%w: %w", ErrPrintSurfaceUnavailable, err)
	}
	return nil
}

func (d *Dispatcher) scheduleRelease(s printer.Surface) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[s] = time.AfterFunc(d.cleanupDelay, func() {
		d.mu.Lock()
		delete(d.pending, s)
		d.mu.Unlock()
		release(s)
	})
}

// Pending reports how many surfaces still await cleanup.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close releases every pending surface immediately.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[printer.Surface]*time.Timer)
	d.mu.Unlock()

	for s, t := range pending {
		t.Stop()
		release(s)
	}
}

func release(s printer.Surface) {
	if err := s.Release(); err != nil {
		log.Warn().Err(err).Str("path", s.Path()).Msg("failed to release print surface")
	}
}
