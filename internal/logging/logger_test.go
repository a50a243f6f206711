package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/kk-code-lab/markln/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected log.Level
	}{
		{"debug level", "debug", log.DebugLevel},
		{"info level", "info", log.InfoLevel},
		{"warning level", "warning", log.WarnLevel},
		{"error level", "error", log.ErrorLevel},
		{"invalid defaults to info", "loud", log.InfoLevel},
		{"case insensitive", "DEBUG", log.DebugLevel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := logging.New(tt.level).GetLevel(); got != tt.expected {
				t.Fatalf("expected level %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	if _, ok := logging.ParseLevel("verbose"); ok {
		t.Fatalf("unknown level should not parse")
	}
	if lvl, ok := logging.ParseLevel("warn"); !ok || lvl != log.WarnLevel {
		t.Fatalf("unexpected parse result %v %v", lvl, ok)
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	logger.Debug("reparse", logging.FieldReason, "fence")
	if !strings.Contains(buf.String(), "reparse") || !strings.Contains(buf.String(), "fence") {
		t.Fatalf("expected structured output, got %q", buf.String())
	}
}

func TestSetDefaultAndLevel(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	fresh := logging.New("info")
	logging.SetDefault(fresh)
	if logging.Default() != fresh {
		t.Fatalf("SetDefault did not change the default logger")
	}
	logging.SetLevel("error")
	if logging.Default().GetLevel() != log.ErrorLevel {
		t.Fatalf("SetLevel to error failed")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	logger := logging.Discard()
	ctx := logging.WithLogger(context.Background(), logger)
	if logging.FromContext(ctx) != logger {
		t.Fatalf("logger not recovered from context")
	}
	if logging.FromContext(context.Background()) == nil {
		t.Fatalf("expected default logger")
	}
}
