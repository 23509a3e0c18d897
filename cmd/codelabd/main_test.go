package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMultiHandler(t *testing.T) {
	var jsonBuf, textBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&jsonBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&textBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = false, want true when any handler accepts it")
	}

	logger := slog.New(h).With("component", "test")
	logger.Debug("quiet")
	logger.Warn("loud")

	if !strings.Contains(jsonBuf.String(), `"msg":"quiet"`) || !strings.Contains(jsonBuf.String(), `"component":"test"`) {
		t.Errorf("json output = %s", jsonBuf.String())
	}
	if strings.Contains(textBuf.String(), "quiet") {
		t.Error("text handler should skip debug records")
	}
	if !strings.Contains(textBuf.String(), "msg=loud") {
		t.Errorf("text output = %s", textBuf.String())
	}
}
