package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFanout(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer
	h := Fanout(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	logger := slog.New(h).With("component", "test")

	logger.Debug("quiet")
	logger.Info("loud")

	if !strings.Contains(debugBuf.String(), "quiet") || !strings.Contains(debugBuf.String(), "loud") {
		t.Errorf("debug handler missed records: %q", debugBuf.String())
	}
	if strings.Contains(infoBuf.String(), "quiet") {
		t.Errorf("info handler got a debug record: %q", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "component=test") {
		t.Errorf("attrs not propagated: %q", infoBuf.String())
	}
}

func TestSetupWithOptionsFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "planboard.log")
	var stderr bytes.Buffer
	closeFn := SetupWithOptions(Options{Level: "info", File: path, MaxSizeMB: 1, Stderr: &stderr})

	slog.Info("Document written", "revision", 3)
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if !strings.Contains(stderr.String(), "Document written") {
		t.Errorf("console output missing record: %q", stderr.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("log file is not JSON: %v: %q", err, data)
	}
	if rec["msg"] != "Document written" || rec["revision"] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}
}
