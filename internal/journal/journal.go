// internal/journal/journal.go
//
// The journal keeps every accepted submission of the session and exports it
// as a spreadsheet under .intake/exports so the shift can be reconciled
// against the backend.

package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrEmpty is returned when exporting a journal with no entries.
var ErrEmpty = errors.New("journal: no entries to export")

// Entry is one accepted submission.
type Entry struct {
	At      time.Time
	Kind    string
	Code    string
	Subject string
	Detail  string
}

// Journal is safe for concurrent use.
type Journal struct {
	dir   string
	clock func() time.Time

	mu      sync.Mutex
	entries []Entry
}

// Option customizes a Journal.
type Option func(*Journal)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(j *Journal) {
		if clock != nil {
			j.clock = clock
		}
	}
}

// New returns an empty journal exporting into dir.
func New(dir string, opts ...Option) *Journal {
	j := &Journal{dir: dir, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}
	return j
}

// Record appends e, stamping it when At is zero.
func (j *Journal) Record(e Entry) {
	if e.At.IsZero() {
		e.At = j.clock()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

// Entries returns a copy in recording order.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len reports how many entries are recorded.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

var header = []interface{}{"fecha", "flujo", "codigo", "registro", "detalle"}

// Export writes intake_<timestamp>.xlsx and returns its path.
func (j *Journal) Export() (string, error) {
	entries := j.Entries()
	if len(entries) == 0 {
		return "", ErrEmpty
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return "", fmt.Errorf("journal: ensure %s: %w", j.dir, err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("journal: header: %w", err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("journal: row %d: %w", i+2, err)
		}
		row := []interface{}{
			e.At.Format("2006-01-02 15:04:05"),
			e.Kind,
			e.Code,
			e.Subject,
			e.Detail,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("journal: row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "E", 22); err != nil {
		return "", fmt.Errorf("journal: widths: %w", err)
	}

	path := filepath.Join(j.dir, fmt.Sprintf("intake_%s.xlsx", j.clock().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("journal: save %s: %w", path, err)
	}
	return path, nil
}
