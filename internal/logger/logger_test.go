package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewAtWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mia.log")
	log, err := NewAt(path, "debug")
	if err != nil {
		t.Fatalf("NewAt: %v", err)
	}
	log.Info("hello")
	if err := log.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file missing entry: %q", data)
	}
	if !strings.Contains(string(data), "timestamp") {
		t.Fatal("expected timestamp key in log entry")
	}
}

func TestNewAtBadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mia.log")
	log, err := NewAt(path, "shout")
	if err != nil {
		t.Fatalf("NewAt: %v", err)
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info level enabled")
	}
}
