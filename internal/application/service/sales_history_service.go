package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/application/saleshistory"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/events"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
)

// SalesHistoryService opens and looks up operators' sales history views.
type SalesHistoryService struct {
	registry  *saleshistory.Registry
	base      saleshistory.ViewConfig
	settings  *SettingsService
	bus       events.Bus
	weekStart time.Weekday
}

// NewSalesHistoryService creates a new sales history service
func NewSalesHistoryService(
	registry *saleshistory.Registry,
	base saleshistory.ViewConfig,
	settings *SettingsService,
	bus events.Bus,
	weekStart time.Weekday,
) *SalesHistoryService {
	return &SalesHistoryService{
		registry:  registry,
		base:      base,
		settings:  settings,
		bus:       bus,
		weekStart: weekStart,
	}
}

// OpenSessionInput is what an operator opens the screen with.
type OpenSessionInput struct {
	UserID  uuid.UUID
	Cashier string
	Filter  saleshistory.FilterRequest
}

// Open creates a view for the operator and performs its first load.
func (s *SalesHistoryService) Open(ctx context.Context, input OpenSessionInput) (*saleshistory.View, *saleshistory.Snapshot, error) {
	var settings *entity.UserSettings
	if s.settings != nil {
		var err error
		settings, err = s.settings.GetSettings(ctx, input.UserID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", input.UserID.String()).Msg("user settings unavailable, using defaults")
			settings = nil
		}
	}

	cfg := s.configFor(settings)
	view, err := s.registry.Open(ctx, cfg, saleshistory.Operator{
		UserID:   input.UserID,
		Cashier:  input.Cashier,
		Settings: settings,
	}, input.Filter)
	if err != nil {
		return nil, nil, MapSalesHistoryError(err)
	}

	snap, err := view.Snapshot()
	if err != nil {
		return nil, nil, MapSalesHistoryError(err)
	}
	return view, snap, nil
}

// View returns the operator's view sid.
func (s *SalesHistoryService) View(sid, owner uuid.UUID) (*saleshistory.View, error) {
	view, ok := s.registry.Get(sid, owner)
	if !ok {
		return nil, apperror.NewNotFoundError("Sales history session")
	}
	return view, nil
}

// Close tears down the operator's view sid.
func (s *SalesHistoryService) Close(sid, owner uuid.UUID) error {
	if !s.registry.Close(sid, owner) {
		return apperror.NewNotFoundError("Sales history session")
	}
	return nil
}

// RecordTransaction announces a committed sale to every open view.
func (s *SalesHistoryService) RecordTransaction(ctx context.Context, evt events.TransactionRecorded) error {
	if evt.RecordedAt.IsZero() {
		evt.RecordedAt = time.Now()
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("reference", evt.Reference).Msg("failed to publish transaction recorded")
		return apperror.NewAppError(http.StatusServiceUnavailable, "Event bus unavailable")
	}
	return nil
}

// configFor applies the operator's timezone to the shared view config.
func (s *SalesHistoryService) configFor(settings *entity.UserSettings) saleshistory.ViewConfig {
	cfg := s.base
	if settings == nil || settings.Timezone == "" {
		return cfg
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", settings.Timezone).Msg("ignoring unknown operator timezone")
		return cfg
	}
	cfg.Resolver = saleshistory.NewResolver(cfg.Now, loc, s.weekStart)
	cfg.Renderer = saleshistory.NewRenderer(loc)
	return cfg
}

// MapSalesHistoryError converts core errors into HTTP-facing AppErrors.
func MapSalesHistoryError(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}

	var fetchErr *saleshistory.FetchError
	switch {
	case errors.Is(err, saleshistory.ErrInvalidRange):
		return apperror.NewValidationError([]apperror.FieldError{{Field: "start_date", Message: err.Error()}})
	case errors.Is(err, saleshistory.ErrAllFetchesFailed):
		return apperror.NewUpstreamError("Sales data could not be loaded. Please try again.")
	case errors.Is(err, saleshistory.ErrTransactionNotFound):
		return apperror.NewNotFoundError("Transaction")
	case errors.Is(err, saleshistory.ErrNoDetailOpen):
		return apperror.NewConflictError("Open a transaction before printing its receipt")
	case errors.Is(err, saleshistory.ErrViewClosed):
		return apperror.NewNotFoundError("Sales history session")
	case errors.As(err, &fetchErr):
		return apperror.NewUpstreamError("Transaction details could not be loaded")
	}
	return err
}
