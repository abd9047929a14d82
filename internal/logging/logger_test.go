package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Printf("lookup %s failed\n", "7791234567890")
	logger.Named("gateway").Zap().Warn("conflict", zap.String("field", "barcode"))
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, ".intake", "logs", "intake.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], `"msg":"lookup 7791234567890 failed"`) {
		t.Fatalf("unexpected first line %s", lines[0])
	}
	if !strings.Contains(lines[1], `"logger":"gateway"`) || !strings.Contains(lines[1], `"field":"barcode"`) {
		t.Fatalf("unexpected second line %s", lines[1])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("ignored")
	if err := logger.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
	NewNop().Named("x").Printf("ignored")
}
