// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, derived loggers, formatters,
//              error logging and timers.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial test suite
// - 2026-03-02 v0.2.0: Rewritten for the synchronous logger

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf, Name: "test"}), &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"WARN", LevelWarn, false},
		{" warning ", LevelWarn, false},
		{"", LevelInfo, false},
		{"audit", LevelAudit, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"Text", FormatText, false},
		{"console", FormatConsole, false},
		{"logfmt", FormatLogfmt, false},
		{"xml", FormatJSON, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	logger.Audit("always")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered messages:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "always") {
		t.Errorf("output missing messages:\n%s", out)
	}
}

func TestDerivedLoggersDoNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	child := logger.WithField("source", "a.cdl").WithName("parser")
	child.Info("child")
	logger.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var first, second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if first["source"] != "a.cdl" || first["logger"] != "test.parser" {
		t.Errorf("child entry = %v", first)
	}
	if _, ok := second["source"]; ok {
		t.Errorf("parent entry carries child field: %v", second)
	}
	if second["logger"] != "test" {
		t.Errorf("parent logger = %v, want test", second["logger"])
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	entry := NewEntry(LevelInfo, "compiled")
	entry.Fields = Fields{"zeta": 1, "alpha": 2, "mid": "x"}

	f := &TextFormatter{DisableTimestamp: true}
	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "[INF] compiled [alpha=2 mid=x zeta=1]\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestLogfmtFormatter(t *testing.T) {
	entry := NewEntry(LevelWarn, "dangling reference")
	entry.Timestamp = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	entry.Fields = Fields{"identifier": "missing", "line": 3}

	out, err := NewLogfmtFormatter().Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := `timestamp=2026-03-02T10:00:00Z level=warn message="dangling reference" identifier="missing" line=3` + "\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestConsoleFormatterColors(t *testing.T) {
	entry := NewEntry(LevelError, "boom")

	f := NewConsoleFormatter()
	out, _ := f.Format(entry)
	if !strings.HasPrefix(string(out), LevelError.Color()) || !strings.HasSuffix(string(out), "\033[0m\n") {
		t.Errorf("Format() = %q, want colored line", out)
	}

	f.DisableColors = true
	out, _ = f.Format(entry)
	if strings.Contains(string(out), "\033[") {
		t.Errorf("Format() = %q, want no color codes", out)
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
	}{
		{
			name:      "syntax error logs at info",
			err:       mdwerror.New("unexpected token").WithCode(mdwerror.CodeCDLUnexpectedToken),
			wantLevel: "info",
		},
		{
			name:      "duplicate id logs at warn",
			err:       mdwerror.New("duplicate").WithCode(mdwerror.CodeCDLDuplicateIdentifier),
			wantLevel: "warn",
		},
		{
			name:      "database error logs at error",
			err:       mdwerror.New("locked").WithCode(mdwerror.CodeDatabaseError),
			wantLevel: "error",
		},
		{
			name:      "plain error logs at error",
			err:       errors.New("plain"),
			wantLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry["level"], tt.wantLevel)
			}
		})
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	timer := logger.StartTimer("compile").WithField("source", "a.cdl")
	timer.Checkpoint("parse")
	if d := timer.Stop(); d <= 0 {
		t.Errorf("Stop() = %v, want > 0", d)
	}
	if d := timer.Stop(); d != 0 {
		t.Errorf("second Stop() = %v, want 0", d)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}

	var done map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &done); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if done["message"] != "compile completed" {
		t.Errorf("message = %v", done["message"])
	}
	if _, ok := done["duration_ms"]; !ok {
		t.Error("duration_ms missing")
	}
	if done["source"] != "a.cdl" {
		t.Errorf("source = %v", done["source"])
	}
}

func TestTimerStopWithError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)

	logger.StartTimer("parse").StopWithError(errors.New("unexpected end of input"))

	out := buf.String()
	if !strings.Contains(out, "parse failed") || !strings.Contains(out, "unexpected end of input") {
		t.Errorf("output = %q", out)
	}
}

func TestCallerInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf, EnableCaller: true})

	logger.Info("where")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	caller, _ := entry["caller"].(string)
	if !strings.HasPrefix(caller, "logger_test.go:") {
		t.Errorf("caller = %q, want logger_test.go:<line>", caller)
	}
}
