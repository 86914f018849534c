package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m0s"},
		{"milliseconds", 200 * time.Millisecond, "200ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Duration{tt.duration}
			result, err := d.MarshalText()
			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
				return
			}
			if string(result) != tt.expected {
				t.Errorf("MarshalText() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var v struct {
		TTL Duration `yaml:"ttl"`
	}
	if err := yaml.Unmarshal([]byte("ttl: 45s\n"), &v); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if v.TTL.Duration != 45*time.Second {
		t.Errorf("TTL = %v, want 45s", v.TTL.Duration)
	}

	if err := yaml.Unmarshal([]byte("ttl: [1, 2]\n"), &v); err == nil {
		t.Error("yaml.Unmarshal() expected error for sequence duration")
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.General.Name != "cdlc" {
		t.Errorf("General.Name = %v, want cdlc", cfg.General.Name)
	}
	if cfg.General.Environment != "development" {
		t.Errorf("General.Environment = %v, want development", cfg.General.Environment)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}
	if cfg.General.LogFormat != "console" {
		t.Errorf("General.LogFormat = %v, want console", cfg.General.LogFormat)
	}

	if cfg.Server.Port != 8420 {
		t.Errorf("Server.Port = %v, want 8420", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout.Duration)
	}
	if cfg.Server.MaxRequestSize != "4MB" {
		t.Errorf("Server.MaxRequestSize = %v, want 4MB", cfg.Server.MaxRequestSize)
	}

	if want := filepath.Join("./data", "cdlc.db"); cfg.Store.Path != want {
		t.Errorf("Store.Path = %v, want %v", cfg.Store.Path, want)
	}

	if cfg.Cache.MaxItems != 256 {
		t.Errorf("Cache.MaxItems = %v, want 256", cfg.Cache.MaxItems)
	}
	if cfg.Cache.TTL.Duration != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m", cfg.Cache.TTL.Duration)
	}

	if cfg.Compiler.MaxInputBytes != 8<<20 {
		t.Errorf("Compiler.MaxInputBytes = %v, want %v", cfg.Compiler.MaxInputBytes, 8<<20)
	}
	if cfg.Compiler.WatchDebounce.Duration != 200*time.Millisecond {
		t.Errorf("Compiler.WatchDebounce = %v, want 200ms", cfg.Compiler.WatchDebounce.Duration)
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := Default()
	if got := cfg.Address(); got != "127.0.0.1:8420" {
		t.Errorf("Address() = %v, want 127.0.0.1:8420", got)
	}

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 9000
	if got := cfg.Address(); got != "0.0.0.0:9000" {
		t.Errorf("Address() = %v, want 0.0.0.0:9000", got)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"512B", 512, false},
		{"64KB", 64 << 10, false},
		{"4MB", 4 << 20, false},
		{"4mb", 4 << 20, false},
		{"1 GB", 1 << 30, false},
		{"", 0, true},
		{"MB", 0, true},
		{"-1KB", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"defaults", func(*Config) {}, ""},
		{"log level", func(c *Config) { c.General.LogLevel = "loud" }, "general.log_level"},
		{"log format", func(c *Config) { c.General.LogFormat = "xml" }, "general.log_format"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"request size", func(c *Config) { c.Server.MaxRequestSize = "huge" }, "server.max_request_size"},
		{"cache", func(c *Config) { c.Cache.MaxItems = -1 }, "cache.max_items"},
		{"input limit", func(c *Config) { c.Compiler.MaxInputBytes = -5 }, "compiler.max_input_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
				t.Fatalf("Validate() error = %v, want code %s", err, mdwerror.CodeInvalidConfig)
			}
			var mdwErr *mdwerror.Error
			if !errors.As(err, &mdwErr) {
				t.Fatalf("Validate() error type = %T, want *mdwerror.Error", err)
			}
			if got := mdwErr.Details()["field"]; got != tt.field {
				t.Errorf("Validate() field = %v, want %v", got, tt.field)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/cdlc.toml")
	if err == nil {
		t.Fatal("Load() expected error for non-existent file")
	}
	if !mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		t.Errorf("Load() code = %v, want %v", mdwerror.GetCode(err), mdwerror.CodeMissingConfig)
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cdlc.toml")

	configContent := `
[general]
name = "reports"
log_level = "debug"

[server]
port = 9999
host = "0.0.0.0"
read_timeout = "5s"

[cache]
ttl = "1m"

[compiler]
max_input_bytes = 1024
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Name != "reports" {
		t.Errorf("General.Name = %v, want reports", cfg.General.Name)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("General.LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %v, want 9999", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout.Duration)
	}
	if cfg.Cache.TTL.Duration != time.Minute {
		t.Errorf("Cache.TTL = %v, want 1m", cfg.Cache.TTL.Duration)
	}
	if cfg.Compiler.MaxInputBytes != 1024 {
		t.Errorf("Compiler.MaxInputBytes = %v, want 1024", cfg.Compiler.MaxInputBytes)
	}

	// Defaults for missing values
	if cfg.Server.WriteTimeout.Duration != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want 30s (default)", cfg.Server.WriteTimeout.Duration)
	}
	if cfg.Cache.MaxItems != 256 {
		t.Errorf("Cache.MaxItems = %v, want 256 (default)", cfg.Cache.MaxItems)
	}
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cdlc.yaml")

	configContent := `
general:
  name: yaml-reports
  log_format: logfmt
server:
  port: 7000
  write_timeout: 15s
store:
  enabled: true
  path: /tmp/history.db
compiler:
  watch_debounce: 50ms
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Name != "yaml-reports" {
		t.Errorf("General.Name = %v, want yaml-reports", cfg.General.Name)
	}
	if cfg.General.LogFormat != "logfmt" {
		t.Errorf("General.LogFormat = %v, want logfmt", cfg.General.LogFormat)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %v, want 7000", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout.Duration != 15*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want 15s", cfg.Server.WriteTimeout.Duration)
	}
	if !cfg.Store.Enabled || cfg.Store.Path != "/tmp/history.db" {
		t.Errorf("Store = %+v, want enabled at /tmp/history.db", cfg.Store)
	}
	if cfg.Compiler.WatchDebounce.Duration != 50*time.Millisecond {
		t.Errorf("Compiler.WatchDebounce = %v, want 50ms", cfg.Compiler.WatchDebounce.Duration)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"broken toml", "bad.toml", "[general\nname = "},
		{"broken yaml", "bad.yml", "general: [unclosed"},
		{"bad duration", "dur.toml", "[cache]\nttl = \"soon\"\n"},
		{"bad level", "level.toml", "[general]\nlog_level = \"chatty\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			_, err := Load(path)
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
				t.Errorf("Load() error = %v, want code %s", err, mdwerror.CodeInvalidConfig)
			}
		})
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("CDLC_TEST_DATA", "/srv/cdlc")

	cfg := &Config{
		General: GeneralConfig{DataDir: "$CDLC_TEST_DATA"},
		Store:   StoreConfig{Path: "${CDLC_TEST_DATA}/runs.db"},
	}
	cfg.expandEnvVars()

	if cfg.General.DataDir != "/srv/cdlc" {
		t.Errorf("DataDir = %v, want /srv/cdlc", cfg.General.DataDir)
	}
	if cfg.Store.Path != "/srv/cdlc/runs.db" {
		t.Errorf("Store.Path = %v, want /srv/cdlc/runs.db", cfg.Store.Path)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.toml")
	if err := os.WriteFile(configPath, []byte("[general]\nname = \"from-env\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv(EnvConfigPath, configPath)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.Name != "from-env" {
		t.Errorf("General.Name = %v, want from-env", cfg.General.Name)
	}
}

func TestLoadFromEnv_NoConfigFound(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	originalWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("LoadFromEnv() expected error when no config found")
	}
	if !mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		t.Errorf("LoadFromEnv() code = %v, want %v", mdwerror.GetCode(err), mdwerror.CodeMissingConfig)
	}
}
