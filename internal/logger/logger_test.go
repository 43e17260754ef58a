package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected logger to be enabled")
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("YUKI_LOG_LEVEL", "debug")
	if got := levelFromEnv(); got != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", got)
	}

	t.Setenv("YUKI_LOG_LEVEL", "nonsense")
	if got := levelFromEnv(); got != zerolog.InfoLevel {
		t.Errorf("Expected info level fallback, got %v", got)
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	output := buf.String()
	if output == "" {
		t.Error("Expected log output, got empty string")
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", output)
	}
}

func TestWithContext(t *testing.T) {
	log := New()
	ctx := WithContext(context.Background(), log)

	if ctx.Value(LoggerKey) == nil {
		t.Error("Expected logger in context, got nil")
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	logWithFields := WithFields(log, map[string]interface{}{
		"document_id": "doc-123",
		"source":      "document",
	})
	logWithFields.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "document_id") || !strings.Contains(output, "doc-123") {
		t.Errorf("Expected output to contain document_id field, got: %s", output)
	}
}
