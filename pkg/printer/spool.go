package printer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Surface is a transient print surface: a spool file holding one rendered
// job until the printer has consumed it.
type Surface interface {
	// Write replaces the surface content.
	Write(data []byte) error
	// Path is where the job is spooled.
	Path() string
	// Release deletes the surface. It is safe to call more than once.
	Release() error
}

// SurfaceFactory creates print surfaces.
type SurfaceFactory interface {
	Create(name string) (Surface, error)
}

// SpoolDir creates surfaces as temporary files under a directory.
type SpoolDir struct {
	dir string
}

// NewSpoolDir returns a factory spooling into dir. An empty dir uses the OS
// temp directory.
func NewSpoolDir(dir string) *SpoolDir {
	if dir == "" {
		dir = os.TempDir()
	}
	return &SpoolDir{dir: dir}
}

// Create makes the spool directory if needed and opens a fresh spool file.
func (s *SpoolDir) Create(name string) (Surface, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("printer: create spool dir: %w", err)
	}
	f, err := os.CreateTemp(s.dir, "receipt-"+sanitize(name)+"-*.prn")
	if err != nil {
		return nil, fmt.Errorf("printer: create spool file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("printer: close spool file: %w", err)
	}
	return &spoolFile{path: path}, nil
}

type spoolFile struct {
	path string
	once sync.Once
	err  error
}

func (f *spoolFile) Write(data []byte) error {
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("printer: write spool file: %w", err)
	}
	return nil
}

func (f *spoolFile) Path() string {
	return f.path
}

func (f *spoolFile) Release() error {
	f.once.Do(func() {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			f.err = err
		}
	})
	return f.err
}

// PrintSurface sends the spooled job on s to p.
func PrintSurface(ctx context.Context, p Printer, s Surface) error {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return fmt.Errorf("printer: read spool file: %w", err)
	}
	return p.Print(ctx, data)
}

func sanitize(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "job"
	}
	return filepath.Base(string(out))
}

// SafeFilename turns a hint into a filesystem and header safe base name.
func SafeFilename(hint string) string {
	return sanitize(hint)
}
