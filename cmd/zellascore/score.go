package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dshills/zellascore/internal/config"
	"github.com/dshills/zellascore/internal/obs"
	"github.com/dshills/zellascore/internal/profile"
	"github.com/dshills/zellascore/internal/redact"
	"github.com/dshills/zellascore/internal/render"
	"github.com/dshills/zellascore/internal/schema"
	"github.com/dshills/zellascore/internal/score"
	"github.com/dshills/zellascore/internal/trades"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// scoreEnv carries the run's I/O. A nil source is resolved from the config.
type scoreEnv struct {
	source trades.Source
	stdout io.Writer
	stderr io.Writer
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [trades-file]",
		Short: "Compute the Zella Score of a set of trades",
		Long: "Compute the Zella Score of trades read from a JSON or YAML file, or from ClickHouse " +
			"with --source clickhouse. Every flag can also be set as ZELLASCORE_<FLAG> or in a --config file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return exitError(3, "failed to load config: %v", err)
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runScore(cmd.Context(), path, cfg, &scoreEnv{
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
			})
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runScore(ctx context.Context, path string, cfg *config.Config, env *scoreEnv) error {
	if err := cfg.Validate(); err != nil {
		return exitError(3, "%v", err)
	}

	logger, err := obs.NewLogger(cfg.Verbose, cfg.LogFormat)
	if err != nil {
		return exitError(3, "failed to set up logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	tracing, err := obs.NewTracing(env.stderr, cfg.Trace, version)
	if err != nil {
		return exitError(1, "failed to set up tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("trace shutdown failed", zap.Error(err))
		}
	}()

	// 1. Resolve source
	src := env.source
	if src == nil {
		src, err = newSource(path, cfg)
		if err != nil {
			return err
		}
	}

	// 2. Fetch trades
	if cfg.Source == "clickhouse" {
		logger.Debug("fetching trades", zap.String("source", src.Name()), zap.String("dsn", redact.Redact(cfg.ClickHouse.DSN)))
	} else {
		logger.Debug("fetching trades", zap.String("source", src.Name()), zap.String("path", path))
	}
	op := tracing.StartOperation(ctx, logger, "fetch", attribute.String("source", src.Name()))
	batch, err := src.Fetch(op.Context())
	if err != nil {
		op.EndWithError(err)
		if src.Name() == "clickhouse" {
			return exitError(4, "failed to fetch trades: %s", redact.Redact(err.Error()))
		}
		return exitError(3, "failed to load trades: %v", err)
	}
	op.End(attribute.Int("trades", len(batch.Trades)))
	logger.Debug("trades loaded", zap.String("source", batch.Source), zap.Int("trades", len(batch.Trades)))

	// 3. Validate trades
	var warnings []string
	for _, ve := range schema.ValidateTrades(batch.Trades) {
		logger.Warn("trade validation", zap.String("path", ve.Path), zap.String("problem", ve.Message))
		warnings = append(warnings, ve.Error())
	}
	if cfg.Strict && len(warnings) > 0 {
		return exitError(5, "%d trade validation errors (--strict), first: %s", len(warnings), warnings[0])
	}

	// 4. Load profile
	prof, err := loadProfile(cfg)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}
	if cfg.Partition != "" {
		prof.Partition = score.Partition(cfg.Partition)
	}
	if errs := schema.ValidateProfile(prof); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("profile validation", zap.String("profile", prof.Name), zap.String("path", e.Path), zap.String("problem", e.Message))
		}
		return exitError(5, "profile %s failed validation: %s", prof.Name, errs[0])
	}
	logger.Debug("profile loaded", zap.String("profile", prof.Name), zap.String("partition", string(prof.Partition)))

	// 5. Score
	opts := prof.Options()
	groupBy := score.GroupKey(cfg.GroupBy)
	op = tracing.StartOperation(ctx, logger, "score",
		attribute.String("profile", prof.Name),
		attribute.String("partition", string(prof.Partition)),
	)
	summary := score.Compute(batch.Trades, opts)
	groups := score.ByGroup(batch.Trades, groupBy.KeyFunc(), opts)
	op.End(
		attribute.Int("score", summary.Score),
		attribute.Int("closed_trades", summary.ClosedTrades),
		attribute.Int("groups", len(groups)),
	)

	// 6. Fill metadata
	rep := score.Report{
		Tool:    "zellascore",
		Version: version,
		Input: score.Input{
			Source:     batch.Source,
			SourceHash: batch.Hash,
			Profile:    prof.Name,
			Partition:  prof.Partition,
			GroupBy:    groupBy,
			Trades:     len(batch.Trades),
		},
		Summary: summary,
		Groups:  groups,
		Meta: score.Meta{
			Weights:  prof.Weights,
			Warnings: warnings,
		},
	}

	// 7. Render
	op = tracing.StartOperation(ctx, logger, "render", attribute.String("format", cfg.Format))
	output, err := renderReport(&rep, cfg.Format)
	if err != nil {
		op.EndWithError(err)
		return err
	}

	if cfg.Out != "" {
		logger.Debug("writing report", zap.String("out", cfg.Out))
		if err := os.WriteFile(cfg.Out, []byte(output), 0644); err != nil {
			op.EndWithError(err)
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		if _, err := io.WriteString(env.stdout, output); err != nil {
			op.EndWithError(err)
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	op.End(attribute.Int("bytes", len(output)))

	// 8. Exit code based on --fail-below
	if summary.Score < cfg.FailBelow {
		return exitError(2, "score %d is below %d", summary.Score, cfg.FailBelow)
	}
	return nil
}

func newSource(path string, cfg *config.Config) (trades.Source, error) {
	switch cfg.Source {
	case "clickhouse":
		since, err := cfg.ClickHouse.SinceTime()
		if err != nil {
			return nil, exitError(3, "%v", err)
		}
		src, err := trades.NewClickHouseSource(trades.ClickHouseConfig{
			DSN:      cfg.ClickHouse.DSN,
			Database: cfg.ClickHouse.Database,
			Table:    cfg.ClickHouse.Table,
			User:     cfg.ClickHouse.User,
			Password: cfg.ClickHouse.Password,
			Account:  cfg.ClickHouse.Account,
			Since:    since,
		})
		if err != nil {
			return nil, exitError(3, "invalid clickhouse source: %v", err)
		}
		return src, nil
	default:
		if path == "" {
			return nil, exitError(3, "a trades file is required with --source file")
		}
		return &trades.FileSource{Path: path}, nil
	}
}

func loadProfile(cfg *config.Config) (*profile.Profile, error) {
	if cfg.ProfileFile != "" {
		return profile.LoadFile(cfg.ProfileFile)
	}
	name := cfg.Profile
	if name == "" {
		name = profile.Default
	}
	return profile.LoadBuiltin(name)
}

func renderReport(rep *score.Report, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal output: %w", err)
		}
		return string(data) + "\n", nil
	case "md":
		return render.Markdown(rep), nil
	default:
		return "", exitError(3, "unknown format: %s", format)
	}
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
