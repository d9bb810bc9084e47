package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/application/saleshistory"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/sangkips/salesdesk-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settingsRepoStub struct {
	settings *entity.UserSettings
	err      error
}

func (s settingsRepoStub) GetByUserID(_ context.Context, _ uuid.UUID) (*entity.UserSettings, error) {
	return s.settings, s.err
}

type storeRepoStub struct {
	profile *entity.StoreProfile
	err     error
}

func (s storeRepoStub) Get(_ context.Context) (*entity.StoreProfile, error) {
	return s.profile, s.err
}

type capturePrinter struct {
	jobs [][]byte
}

func (p *capturePrinter) Kind() printer.Kind { return printer.KindNetwork }

func (p *capturePrinter) Print(_ context.Context, data []byte) error {
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *capturePrinter) Status(context.Context) printer.Status {
	return printer.Status{Kind: printer.KindNetwork, Target: "10.0.0.5:9100", Ready: true}
}

func (p *capturePrinter) Close() error { return nil }

func TestMapSalesHistoryError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("wrap: %w", saleshistory.ErrInvalidRange), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: %w", saleshistory.ErrAllFetchesFailed, errors.New("down")), http.StatusBadGateway},
		{saleshistory.ErrTransactionNotFound, http.StatusNotFound},
		{saleshistory.ErrNoDetailOpen, http.StatusConflict},
		{saleshistory.ErrViewClosed, http.StatusNotFound},
		{&saleshistory.FetchError{Op: "detail", Err: errors.New("timeout")}, http.StatusBadGateway},
		{apperror.ErrForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		got := apperror.GetAppError(MapSalesHistoryError(tc.err))
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
	}

	assert.NoError(t, MapSalesHistoryError(nil))
	plain := errors.New("boom")
	assert.Same(t, plain, MapSalesHistoryError(plain))
}

func TestSettingsService_Defaults(t *testing.T) {
	userID := uuid.New()
	svc := NewSettingsService(settingsRepoStub{})

	settings, err := svc.GetSettings(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, settings.UserID)
	assert.True(t, settings.AutoRefresh)
	assert.Zero(t, settings.ReceiptWidth)

	stored := &entity.UserSettings{UserID: userID, ReceiptWidth: printer.Width80mm}
	settings, err = NewSettingsService(settingsRepoStub{settings: stored}).GetSettings(context.Background(), userID)
	require.NoError(t, err)
	assert.Same(t, stored, settings)
}

func TestSalesHistoryService_ConfigFor(t *testing.T) {
	base := saleshistory.ViewConfig{Now: time.Now}
	svc := NewSalesHistoryService(nil, base, nil, nil, time.Monday)

	assert.Nil(t, svc.configFor(nil).Resolver)
	assert.Nil(t, svc.configFor(&entity.UserSettings{Timezone: "Mars/Olympus"}).Resolver)

	cfg := svc.configFor(&entity.UserSettings{Timezone: "Africa/Nairobi"})
	require.NotNil(t, cfg.Resolver)
	assert.Equal(t, "Africa/Nairobi", cfg.Resolver.Location().String())
	assert.NotNil(t, cfg.Renderer)
}

func TestPrinterService(t *testing.T) {
	p := &capturePrinter{}
	svc := NewPrinterService(p, saleshistory.NewRenderer(time.UTC), storeRepoStub{profile: &entity.StoreProfile{Name: "Corner Shop"}}, 99)

	status := svc.GetStatus(context.Background())
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
	assert.Equal(t, "network", status.Type)
	assert.Equal(t, "10.0.0.5:9100", status.Target)
	assert.Equal(t, printer.Width58mm, status.Width, "invalid widths fall back to 58mm")

	page, err := svc.TestPrint(context.Background())
	require.NoError(t, err)
	require.Len(t, p.jobs, 1)
	assert.Equal(t, page.ESCPOS, p.jobs[0])
	assert.Contains(t, page.Text(), "Corner Shop")

	null := NewPrinterService(printer.NewNullPrinter(), saleshistory.NewRenderer(time.UTC), storeRepoStub{err: errors.New("db down")}, printer.Width80mm)
	nullStatus := null.GetStatus(context.Background())
	assert.False(t, nullStatus.Configured)
	assert.False(t, nullStatus.Connected)
	assert.Equal(t, "none", nullStatus.Type)
	page, err = null.TestPrint(context.Background())
	assert.ErrorIs(t, err, printer.ErrNotConfigured)
	require.NotNil(t, page)
	assert.Equal(t, printer.Width80mm, page.Width)
}
