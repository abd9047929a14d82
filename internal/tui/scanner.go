package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/scan"
)

// captureMsg delivers one decoder capture from the device channel.
type captureMsg struct {
	capture scan.Capture
}

// scannerClosedMsg reports that the device channel was closed.
type scannerClosedMsg struct{}

func waitForCapture(ch <-chan scan.Capture) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		capture, ok := <-ch
		if !ok {
			return scannerClosedMsg{}
		}
		return captureMsg{capture: capture}
	}
}

// wedge collects keystrokes from a keyboard-wedge scanner until enter.
type wedge struct {
	buf strings.Builder
}

func (w *wedge) add(runes []rune) {
	for _, r := range runes {
		w.buf.WriteRune(r)
	}
}

func (w *wedge) pending() string {
	return w.buf.String()
}

func (w *wedge) reset() {
	w.buf.Reset()
}

// flush turns the buffered line into a code. ok is false for blank lines.
func (w *wedge) flush() (inventory.ScannedCode, bool) {
	line := w.buf.String()
	w.buf.Reset()
	code, err := scan.Normalize(scan.ParseLine(line))
	if err != nil {
		return inventory.ScannedCode{}, false
	}
	return code, true
}
