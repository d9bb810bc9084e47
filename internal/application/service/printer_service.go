package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/application/saleshistory"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/pkg/printer"
)

// PrinterService reports on and exercises the receipt printer.
type PrinterService struct {
	printer   printer.Printer
	renderer  *saleshistory.Renderer
	storeRepo repository.StoreRepository
	width     int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	renderer *saleshistory.Renderer,
	storeRepo repository.StoreRepository,
	width int,
) *PrinterService {
	if !printer.ValidWidth(width) {
		width = printer.Width58mm
	}
	return &PrinterService{
		printer:   p,
		renderer:  renderer,
		storeRepo: storeRepo,
		width:     width,
	}
}

// PrinterStatus is the reported printer state plus the paper width receipts
// are laid out for.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Target     string `json:"target,omitempty"`
	Error      string `json:"error,omitempty"`
	Width      int    `json:"width"`
}

// GetStatus checks the printer.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	st := s.printer.Status(ctx)
	return &PrinterStatus{
		Configured: st.Kind != printer.KindNone,
		Connected:  st.Ready,
		Type:       string(st.Kind),
		Target:     st.Target,
		Error:      st.Error,
		Width:      s.width,
	}
}

// TestPrint sends a test page to the printer.
// The rendered page is returned even when printing fails so it can be shown.
func (s *PrinterService) TestPrint(ctx context.Context) (*saleshistory.Rendered, error) {
	storeName := ""
	if s.storeRepo != nil {
		profile, err := s.storeRepo.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("store profile unavailable for test page")
		} else if profile != nil {
			storeName = profile.Name
		}
	}

	page := s.renderer.TestPage(storeName, s.width, time.Now())
	if err := s.printer.Print(ctx, page.ESCPOS); err != nil {
		return page, fmt.Errorf("test print failed: %w", err)
	}

	return page, nil
}
