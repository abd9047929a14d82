// internal/scan/adapter.go
//
// The capture adapter turns raw decoder events into ScannedCodes. Hardware
// scanners in keyboard-wedge mode and camera decoders both end up as text
// lines, optionally prefixed with the symbology ("QR_CODE:..."). Repeated
// reads of the same code inside the debounce window are dropped before they
// reach a workflow.

package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/metrics"
)

// FormatQR is the decoder format name for QR symbols.
const FormatQR = "QR_CODE"

// Event is one decoded symbol.
type Event struct {
	Payload string
	Format  string
}

// Normalize validates an event and tags it QR or Barcode.
func Normalize(ev Event) (inventory.ScannedCode, error) {
	tag := inventory.TagBarcode
	if strings.EqualFold(strings.TrimSpace(ev.Format), FormatQR) {
		tag = inventory.TagQR
	}
	return inventory.NewScannedCode(ev.Payload, tag)
}

// Manual validates operator-typed text.
func Manual(text string) (inventory.ScannedCode, error) {
	return inventory.NewScannedCode(text, inventory.TagManual)
}

// formats are the symbology names decoders put in front of a payload.
var formats = map[string]bool{
	FormatQR:       true,
	"AZTEC":        true,
	"CODABAR":      true,
	"CODE_39":      true,
	"CODE_93":      true,
	"CODE_128":     true,
	"DATA_MATRIX":  true,
	"EAN_8":        true,
	"EAN_13":       true,
	"ITF":          true,
	"MAXICODE":     true,
	"PDF_417":      true,
	"RSS_14":       true,
	"RSS_EXPANDED": true,
	"UPC_A":        true,
	"UPC_E":        true,
}

// ParseLine splits an optional "FORMAT:" prefix from a decoder line. Only a
// known symbology name counts as a prefix, anything else stays in the payload.
func ParseLine(line string) Event {
	line = strings.TrimRight(line, "\r\n")
	if idx := strings.IndexByte(line, ':'); idx > 0 && formats[line[:idx]] {
		return Event{Format: line[:idx], Payload: line[idx+1:]}
	}
	return Event{Payload: line}
}

// Capture is one adapter output: a code or the error that stopped the source.
type Capture struct {
	Code inventory.ScannedCode
	Err  error
}

// Decoder produces raw events until ctx ends or the source is exhausted.
type Decoder interface {
	Events(ctx context.Context) (<-chan Event, <-chan error)
}

// LineDecoder reads one event per line from r.
type LineDecoder struct {
	r io.Reader
}

// NewLineDecoder wraps r, typically os.Stdin or a serial device.
func NewLineDecoder(r io.Reader) *LineDecoder {
	return &LineDecoder{r: r}
}

// Events streams every non-empty line. The error channel receives nil at a
// clean EOF.
func (d *LineDecoder) Events(ctx context.Context) (<-chan Event, <-chan error) {
	events := make(chan Event)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(d.r)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			select {
			case events <- ParseLine(line):
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		errs <- scanner.Err()
	}()
	return events, errs
}

// Debouncer drops repeats of a code inside its rate window.
type Debouncer struct {
	limiter *limiter.Limiter
}

// NewDebouncer accepts limiter rates such as "1-S" (one read per code per
// second).
func NewDebouncer(formatted string) (*Debouncer, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("scan: debounce rate %q: %w", formatted, err)
	}
	return &Debouncer{limiter: limiter.New(memory.NewStore(), rate)}, nil
}

// Allow reports whether code should be forwarded.
func (d *Debouncer) Allow(ctx context.Context, code inventory.ScannedCode) bool {
	if d == nil {
		return true
	}
	lc, err := d.limiter.Get(ctx, code.Value)
	if err != nil {
		return true
	}
	if lc.Reached {
		metrics.RecordDebouncedScan()
		return false
	}
	return true
}

// Logger receives rejected reads.
type Logger interface {
	Printf(format string, args ...any)
}

// Adapter normalizes and debounces a decoder.
type Adapter struct {
	decoder   Decoder
	debouncer *Debouncer
	logger    Logger
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithDebouncer drops repeated reads.
func WithDebouncer(d *Debouncer) Option {
	return func(a *Adapter) {
		a.debouncer = d
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdapter wraps decoder.
func NewAdapter(decoder Decoder, opts ...Option) *Adapter {
	a := &Adapter{decoder: decoder, logger: nopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// ErrStopped is delivered when the decoder ends without an error.
var ErrStopped = errors.New("scan: decoder stopped")

// Start runs the decoder until ctx ends. The channel closes after a final
// Capture carrying the reason the source stopped.
func (a *Adapter) Start(ctx context.Context) <-chan Capture {
	out := make(chan Capture)
	go func() {
		defer close(out)
		events, errs := a.decoder.Events(ctx)
		for ev := range events {
			code, err := Normalize(ev)
			if err != nil {
				a.logger.Printf("scan: dropped read %q: %v", ev.Payload, err)
				continue
			}
			if !a.debouncer.Allow(ctx, code) {
				continue
			}
			select {
			case out <- Capture{Code: code}:
			case <-ctx.Done():
				return
			}
		}
		err := <-errs
		if err == nil {
			err = ErrStopped
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		select {
		case out <- Capture{Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
