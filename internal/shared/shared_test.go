package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected log output to contain key=value, got %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "run", "abc")
		logger.Info("started")

		if !strings.Contains(buf.String(), "run=abc") {
			t.Errorf("expected child logger field, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "scdig.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("to file")
	})
}

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name    string
		want    log.Level
		wantErr bool
	}{
		{name: "debug", want: log.DebugLevel},
		{name: "info", want: log.InfoLevel},
		{name: "WARN", want: log.WarnLevel},
		{name: "error", want: log.ErrorLevel},
		{name: "verbose", want: log.InfoLevel, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("GenerateID() returned invalid uuid %q: %v", id, err)
	}
	if GenerateID() == id {
		t.Error("expected unique ids")
	}
}

func TestMarshalJSON(t *testing.T) {
	compact, err := MarshalJSON(map[string]int{"a": 1}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(compact) != `{"a":1}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(map[string]int{"a": 1}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"a\": 1") {
		t.Errorf("unexpected pretty output %s", pretty)
	}
}
