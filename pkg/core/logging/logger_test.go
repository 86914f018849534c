package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/pkg/core/config"
)

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %v, want json", cfg.Format)
	}
}

func TestConfigFor(t *testing.T) {
	tests := []struct {
		name    string
		general config.GeneralConfig
		level   string
		format  string
		caller  bool
	}{
		{"empty", config.GeneralConfig{}, "info", "json", false},
		{"logfmt", config.GeneralConfig{LogLevel: "warn", LogFormat: "logfmt"}, "warn", "logfmt", false},
		{"dev debug", config.GeneralConfig{LogLevel: "debug", Environment: "development"}, "debug", "json", true},
		{"prod debug", config.GeneralConfig{LogLevel: "debug", Environment: "production"}, "debug", "json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConfigFor("cdlc", tt.general)
			if cfg.Level != tt.level {
				t.Errorf("Level = %v, want %v", cfg.Level, tt.level)
			}
			if cfg.Format != tt.format {
				t.Errorf("Format = %v, want %v", cfg.Format, tt.format)
			}
			if cfg.EnableCaller != tt.caller {
				t.Errorf("EnableCaller = %v, want %v", cfg.EnableCaller, tt.caller)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected mdwlog.Level
	}{
		{"trace", mdwlog.LevelTrace},
		{"debug", mdwlog.LevelDebug},
		{"info", mdwlog.LevelInfo},
		{"warn", mdwlog.LevelWarn},
		{"warning", mdwlog.LevelWarn},
		{"error", mdwlog.LevelError},
		{"invalid", mdwlog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "server",
		Level:       "debug",
		Format:      "json",
		Output:      &buf,
	})

	logger.Debug("compiled", mdwlog.Field("nodes", 12))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, output %q", err, buf.String())
	}
	if entry["message"] != "compiled" {
		t.Errorf("message = %v, want compiled", entry["message"])
	}
	if entry["logger"] != "server" {
		t.Errorf("logger = %v, want server", entry["logger"])
	}
	if entry["level"] != "debug" {
		t.Errorf("level = %v, want debug", entry["level"])
	}
	if entry["nodes"] != float64(12) {
		t.Errorf("nodes = %v, want 12", entry["nodes"])
	}
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "cdlc", Level: "warn", Format: "logfmt", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output = %q, info entry should be filtered", out)
	}
	if !strings.Contains(out, `message="shown"`) {
		t.Errorf("output = %q, want warn entry", out)
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName:       "cdlc",
		Format:            "text",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})

	logger.Info("twice")

	if !strings.Contains(primary.String(), "twice") {
		t.Errorf("primary output = %q, want entry", primary.String())
	}
	if primary.String() != extra.String() {
		t.Errorf("extra output = %q, want %q", extra.String(), primary.String())
	}
}

func TestNewSimpleLogger(t *testing.T) {
	logger := NewSimpleLogger("test-service")
	if logger == nil {
		t.Fatal("NewSimpleLogger() returned nil")
	}
	if logger.Name() != "test-service" {
		t.Errorf("Name() = %v, want test-service", logger.Name())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.IsLevelEnabled(mdwlog.LevelError) {
		t.Error("Discard() logger should not enable error level")
	}
}

func TestKV(t *testing.T) {
	if fields := KV(); fields != nil {
		t.Error("KV() with no args should return nil")
	}

	fields := KV("key1", "value1", "key2", 42)
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	fields = KV(123, "value", "", "blank", "orphan")
	if len(fields) != 0 {
		t.Errorf("KV() = %v, want no fields", fields)
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLogger(LoggerConfig{ServiceName: "benchmark", Output: &bytes.Buffer{}})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", KV("iteration", i))
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "cdlc", Output: &buf})

	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
	if FromContext(context.Background(), logger) != logger {
		t.Error("FromContext() without id should return the logger itself")
	}

	ctx := WithRequestID(context.Background(), "r-1")
	if got := GetRequestID(ctx); got != "r-1" {
		t.Errorf("GetRequestID() = %q, want r-1", got)
	}
	FromContext(ctx, logger).Info("tagged")
	if !strings.Contains(buf.String(), `"request_id":"r-1"`) {
		t.Errorf("output = %q, want request id", buf.String())
	}
}
