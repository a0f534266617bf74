package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("score", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != "json" || cfg.Profile != "zella" || cfg.Source != "file" || cfg.GroupBy != "none" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ClickHouse.Table != "trades" {
		t.Errorf("ch-table default = %q, want trades", cfg.ClickHouse.Table)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zellascore.yaml")
	content := "format: md\ngroup-by: symbol\nfail-below: 40\nch-table: fills\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ZELLASCORE_GROUP_BY", "strategy")
	t.Setenv("ZELLASCORE_CH_DSN", "clickhouse://localhost:9000/default")

	cfg, err := Load(newFlags(t, "--config", path, "--fail-below", "70"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file over default", cfg.Format, "md"},
		{"env over file", cfg.GroupBy, "strategy"},
		{"flag over file", cfg.FailBelow, 70},
		{"file table", cfg.ClickHouse.Table, "fills"},
		{"env dsn", cfg.ClickHouse.DSN, "clickhouse://localhost:9000/default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Format: "json", GroupBy: "none", Source: "file", LogFormat: "console"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"legacy partition", func(c *Config) { c.Partition = "legacy" }, ""},
		{"bad format", func(c *Config) { c.Format = "xml" }, "format"},
		{"bad partition", func(c *Config) { c.Partition = "loose" }, "partition"},
		{"bad group", func(c *Config) { c.GroupBy = "day" }, "group-by"},
		{"bad log format", func(c *Config) { c.LogFormat = "text" }, "log-format"},
		{"fail-below too high", func(c *Config) { c.FailBelow = 101 }, "fail-below"},
		{"clickhouse without dsn", func(c *Config) { c.Source = "clickhouse" }, "ch-dsn"},
		{"bad since", func(c *Config) { c.ClickHouse.Since = "last week" }, "since"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSinceTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T14:30:00Z", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ClickHouse{Since: tt.in}.SinceTime()
		if err != nil {
			t.Errorf("SinceTime(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("SinceTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
