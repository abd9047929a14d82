package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Hernesto-SRL/management-front/internal/logbook"
)

// Level is the severity of an operator notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier is the fire-and-forget sink for operator messages.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a plain function to Notifier.
type Func func(level Level, message string)

// Notify calls f.
func (f Func) Notify(level Level, message string) {
	if f != nil {
		f(level, message)
	}
}

// Fanout delivers each notification to every sink in order.
type Fanout []Notifier

// Notify forwards to every non-nil sink.
func (f Fanout) Notify(level Level, message string) {
	for _, n := range f {
		if n != nil {
			n.Notify(level, message)
		}
	}
}

// Nop discards notifications.
var Nop Notifier = Func(func(Level, string) {})

// ToLogbook writes notifications into the journey logbook.
func ToLogbook(book *logbook.Logbook) Notifier {
	return Func(func(level Level, message string) {
		switch level {
		case LevelSuccess:
			book.OK("%s", message)
		case LevelWarning:
			book.Warn("%s", message)
		case LevelError:
			book.Error("%s", message)
		default:
			book.Info("%s", message)
		}
	})
}

// ToZap mirrors notifications into the structured log.
func ToZap(logger *zap.Logger) Notifier {
	if logger == nil {
		return Nop
	}
	return Func(func(level Level, message string) {
		field := zap.String("level", level.String())
		switch level {
		case LevelWarning:
			logger.Warn("notify: "+message, field)
		case LevelError:
			logger.Error("notify: "+message, field)
		default:
			logger.Info("notify: "+message, field)
		}
	})
}

// Entry is one captured notification.
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Notify captures the entry.
func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
}

// Entries returns a copy of everything captured so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Last returns the most recent entry.
func (r *Recorder) Last() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}
