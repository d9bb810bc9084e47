package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// ErrNotConfigured is returned by the null printer so callers can fall back
// to another output channel.
var ErrNotConfigured = errors.New("printer: no printer configured")

// Kind is how the receipt printer is attached.
type Kind string

const (
	KindUSB     Kind = "usb"
	KindNetwork Kind = "network"
	KindNone    Kind = "none"
)

// ParseKind maps a configured printer type to a Kind. Empty means none.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindUSB, KindNetwork, KindNone:
		return Kind(s), nil
	case "":
		return KindNone, nil
	}
	return "", fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", s)
}

// Status reports whether a printer can take jobs.
type Status struct {
	Kind   Kind   `json:"type"`
	Target string `json:"target,omitempty"`
	Ready  bool   `json:"ready"`
	Error  string `json:"error,omitempty"`
}

// Printer takes raw ESC/POS jobs.
type Printer interface {
	// Kind reports the attachment without touching the device.
	Kind() Kind
	// Print sends one job. It gives up once ctx is done.
	Print(ctx context.Context, data []byte) error
	// Status checks that the device can be reached.
	Status(ctx context.Context) Status
	Close() error
}

// Config selects and addresses a printer.
type Config struct {
	Type         string
	USBPath      string
	Address      string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// New creates the printer cfg describes.
func New(cfg Config) (Printer, error) {
	kind, err := ParseKind(cfg.Type)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindUSB:
		if cfg.USBPath == "" {
			return nil, errors.New("printer: USB path is required for usb printers")
		}
		return &usbPrinter{path: cfg.USBPath}, nil
	case KindNetwork:
		if cfg.Address == "" {
			return nil, errors.New("printer: address is required for network printers")
		}
		p := &networkPrinter{address: cfg.Address, dialTimeout: cfg.DialTimeout, writeTimeout: cfg.WriteTimeout}
		if p.dialTimeout <= 0 {
			p.dialTimeout = 5 * time.Second
		}
		if p.writeTimeout <= 0 {
			p.writeTimeout = 10 * time.Second
		}
		return p, nil
	}
	return NewNullPrinter(), nil
}

// usbPrinter writes to a device file such as /dev/usb/lp0, opened per job.
type usbPrinter struct {
	path string
}

func (p *usbPrinter) Kind() Kind { return KindUSB }

func (p *usbPrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Status(_ context.Context) Status {
	st := Status{Kind: KindUSB, Target: p.path}
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	_ = f.Close()
	st.Ready = true
	return st
}

func (p *usbPrinter) Close() error { return nil }

// networkPrinter speaks raw TCP, usually on port 9100, dialed per job.
type networkPrinter struct {
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

func (p *networkPrinter) Kind() Kind { return KindNetwork }

func (p *networkPrinter) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: p.dialTimeout}
	return d.DialContext(ctx, "tcp", p.address)
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return fmt.Errorf("printer: connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Status(ctx context.Context) Status {
	st := Status{Kind: KindNetwork, Target: p.address}
	conn, err := p.dial(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	_ = conn.Close()
	st.Ready = true
	return st
}

func (p *networkPrinter) Close() error { return nil }

type nullPrinter struct{}

// NewNullPrinter creates a printer that refuses every job with ErrNotConfigured.
func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Kind() Kind { return KindNone }

func (nullPrinter) Print(context.Context, []byte) error { return ErrNotConfigured }

func (nullPrinter) Status(context.Context) Status {
	return Status{Kind: KindNone, Error: ErrNotConfigured.Error()}
}

func (nullPrinter) Close() error { return nil }
