package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New("debug", false)
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", log.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	testCases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"WARN":    zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range testCases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	retrieved := FromContext(ctx)
	retrieved.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	previous := Default()
	SetDefault(NewWithWriter(buf))
	defer SetDefault(previous)

	log := FromContext(context.Background())
	log.Warn().Msg("fallback")

	if !strings.Contains(buf.String(), "fallback") {
		t.Errorf("Expected default logger to be used, got: %s", buf.String())
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"user_id": "123",
		"action":  "test",
	})

	log.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, `"user_id":"123"`) || !strings.Contains(output, `"action":"test"`) {
		t.Errorf("Expected output to contain fields, got: %s", output)
	}
}
