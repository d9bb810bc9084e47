package saleshistory

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sangkips/salesdesk-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSurfaces struct{}

func (failingSurfaces) Create(string) (printer.Surface, error) {
	return nil, errors.New("spool directory is read-only")
}

func spoolFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "receipt-*.prn"))
	require.NoError(t, err)
	return matches
}

func renderedFixture() *Rendered {
	return NewRenderer(time.UTC).Render(Compose(detailFixture(), profileFixture(), ""), printer.Width58mm)
}

func TestDispatcher_PrintTier(t *testing.T) {
	dir := t.TempDir()
	p := &recordingPrinter{}
	d := NewDispatcher(p, printer.NewSpoolDir(dir), 10*time.Millisecond)
	defer d.Close()

	r := renderedFixture()
	outcome, err := d.PrintOrDownload(context.Background(), r, "receipt-TX-0001")

	require.NoError(t, err)
	assert.Equal(t, TierPrint, outcome.Tier)
	assert.Nil(t, outcome.Document)
	require.Len(t, p.Jobs(), 1)
	assert.Equal(t, r.ESCPOS, p.Jobs()[0])

	assert.Eventually(t, func() bool {
		return len(spoolFiles(t, dir)) == 0 && d.Pending() == 0
	}, time.Second, 5*time.Millisecond, "surface is released after the delay")
}

func TestDispatcher_PrinterFailureFallsBack(t *testing.T) {
	dir := t.TempDir()
	p := &recordingPrinter{err: printer.ErrNotConfigured}
	d := NewDispatcher(p, printer.NewSpoolDir(dir), 10*time.Millisecond)
	defer d.Close()

	outcome, err := d.PrintOrDownload(context.Background(), renderedFixture(), "receipt-TX-0001")

	require.NoError(t, err)
	assert.Equal(t, TierDownload, outcome.Tier)
	assert.Equal(t, "receipt-TX-0001.pdf", outcome.Filename)
	assert.Equal(t, "application/pdf", outcome.ContentType)
	assert.True(t, bytes.HasPrefix(outcome.Document, []byte("%PDF-")))
	require.NotNil(t, outcome.Notice)
	assert.Equal(t, NoticeInfo, outcome.Notice.Level)

	assert.Eventually(t, func() bool {
		return len(spoolFiles(t, dir)) == 0
	}, time.Second, 5*time.Millisecond, "failed print still cleans up")
}

func TestDispatcher_NoSurface(t *testing.T) {
	p := &recordingPrinter{}
	d := NewDispatcher(p, failingSurfaces{}, time.Millisecond)

	outcome, err := d.PrintOrDownload(context.Background(), renderedFixture(), "x")

	require.NoError(t, err)
	assert.Equal(t, TierDownload, outcome.Tier)
	assert.Empty(t, p.Jobs())
	assert.Equal(t, 0, d.Pending())
}

func TestDispatcher_NoPrinterSkipsSpooling(t *testing.T) {
	dir := t.TempDir()
	d := NewDispatcher(printer.NewNullPrinter(), printer.NewSpoolDir(dir), time.Hour)
	defer d.Close()

	outcome, err := d.PrintOrDownload(context.Background(), renderedFixture(), "receipt-TX-0001")

	require.NoError(t, err)
	assert.Equal(t, TierDownload, outcome.Tier)
	assert.Equal(t, 0, d.Pending())
	assert.Empty(t, spoolFiles(t, dir))
}

func TestDispatcher_CancelledPrint(t *testing.T) {
	dir := t.TempDir()
	p := &recordingPrinter{}
	d := NewDispatcher(p, printer.NewSpoolDir(dir), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := d.PrintOrDownload(ctx, renderedFixture(), "x")

	require.NoError(t, err)
	assert.Equal(t, TierDownload, outcome.Tier)
	assert.Empty(t, p.Jobs())
	assert.Equal(t, 1, d.Pending())

	d.Close()
	assert.Equal(t, 0, d.Pending())
	assert.Empty(t, spoolFiles(t, dir))
}

func TestDispatcher_RepeatedPrintsLeaveNothingBehind(t *testing.T) {
	dir := t.TempDir()
	d := NewDispatcher(&recordingPrinter{}, printer.NewSpoolDir(dir), 5*time.Millisecond)
	defer d.Close()

	for i := 0; i < 5; i++ {
		_, err := d.PrintOrDownload(context.Background(), renderedFixture(), "receipt")
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 0
	}, time.Second, 5*time.Millisecond)
}
