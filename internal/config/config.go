// Package config resolves score options from flags, ZELLASCORE_* environment
// variables and an optional YAML config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables: --ch-dsn reads ZELLASCORE_CH_DSN.
const EnvPrefix = "ZELLASCORE"

// Config holds every setting of a score run.
type Config struct {
	Format      string
	Out         string
	Profile     string
	ProfileFile string
	Partition   string
	GroupBy     string
	FailBelow   int
	Strict      bool
	Source      string
	ClickHouse  ClickHouse
	Verbose     bool
	LogFormat   string
	Trace       bool
}

// ClickHouse locates the trades table when Source is "clickhouse".
type ClickHouse struct {
	DSN      string
	Database string
	Table    string
	User     string
	Password string
	Account  string
	Since    string
}

// RegisterFlags declares the score flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML config file with flag names as keys")
	fs.String("format", "json", "Output format: json or md")
	fs.String("out", "", "Output file path (default: stdout)")
	fs.String("profile", "zella", "Built-in profile name")
	fs.String("profile-file", "", "Custom profile YAML file (overrides --profile)")
	fs.String("partition", "", "Win/loss partition: strict or legacy (default: from profile)")
	fs.String("group-by", "none", "Also score per group: none, symbol or strategy")
	fs.Int("fail-below", 0, "Exit 2 if the score is below this value")
	fs.Bool("strict", false, "Treat trade validation warnings as errors")
	fs.String("source", "file", "Trade source: file or clickhouse")
	fs.String("ch-dsn", "", "ClickHouse DSN, e.g. clickhouse://host:9000/db")
	fs.String("ch-database", "", "ClickHouse database (overrides DSN)")
	fs.String("ch-table", "trades", "ClickHouse trades table")
	fs.String("ch-user", "", "ClickHouse user (overrides DSN)")
	fs.String("ch-password", "", "ClickHouse password (overrides DSN)")
	fs.String("ch-account", "", "Only score trades of this account")
	fs.String("since", "", "Only score trades closed at or after this time (RFC 3339 or YYYY-MM-DD)")
	fs.Bool("verbose", false, "Log processing steps to stderr")
	fs.String("log-format", "console", "Log format: console or json")
	fs.Bool("trace", false, "Export trace spans to stderr")
}

// Load merges fs with the environment and the --config file.
// Precedence: explicit flag, environment, config file, flag default.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	return &Config{
		Format:      v.GetString("format"),
		Out:         v.GetString("out"),
		Profile:     v.GetString("profile"),
		ProfileFile: v.GetString("profile-file"),
		Partition:   v.GetString("partition"),
		GroupBy:     v.GetString("group-by"),
		FailBelow:   v.GetInt("fail-below"),
		Strict:      v.GetBool("strict"),
		Source:      v.GetString("source"),
		ClickHouse: ClickHouse{
			DSN:      v.GetString("ch-dsn"),
			Database: v.GetString("ch-database"),
			Table:    v.GetString("ch-table"),
			User:     v.GetString("ch-user"),
			Password: v.GetString("ch-password"),
			Account:  v.GetString("ch-account"),
			Since:    v.GetString("since"),
		},
		Verbose:   v.GetBool("verbose"),
		LogFormat: v.GetString("log-format"),
		Trace:     v.GetBool("trace"),
	}, nil
}

// Validate checks enumerated settings and ranges.
func (c *Config) Validate() error {
	var errs []string
	check := func(name, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Sprintf("%s %q must be one of %s", name, value, strings.Join(allowed, ", ")))
	}

	check("format", c.Format, "json", "md")
	check("partition", c.Partition, "", "strict", "legacy")
	check("group-by", c.GroupBy, "none", "symbol", "strategy")
	check("source", c.Source, "file", "clickhouse")
	check("log-format", c.LogFormat, "console", "json")

	if c.FailBelow < 0 || c.FailBelow > 100 {
		errs = append(errs, fmt.Sprintf("fail-below %d must be between 0 and 100", c.FailBelow))
	}
	if c.Source == "clickhouse" && c.ClickHouse.DSN == "" {
		errs = append(errs, "ch-dsn is required for the clickhouse source")
	}
	if _, err := c.ClickHouse.SinceTime(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

var sinceLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// SinceTime parses Since. An empty value yields the zero time.
func (c ClickHouse) SinceTime() (time.Time, error) {
	if c.Since == "" {
		return time.Time{}, nil
	}
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, c.Since); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("since %q is not RFC 3339 or YYYY-MM-DD", c.Since)
}
