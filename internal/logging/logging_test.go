package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_HasComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Init("debug", "json", &buf); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	New("engine").Info("scored", zap.Int("tests", 12))

	output := buf.String()
	if !strings.Contains(output, `"component":"engine"`) {
		t.Errorf("expected component field in output, got: %s", output)
	}
	if !strings.Contains(output, `"tests":12`) {
		t.Errorf("expected tests field in output, got: %s", output)
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := Init("warn", "console", &buf); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	logger := New("filter")
	logger.Info("hidden")
	logger.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info line should be filtered at warn level, got: %s", output)
	}
	if !strings.Contains(output, "shown") {
		t.Errorf("expected warn line in output, got: %s", output)
	}
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	if err := Init("verbose", "console"); err == nil {
		t.Error("expected error for unknown level")
	}
}
