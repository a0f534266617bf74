// Package schema validates scoring profiles and trade inputs.
package schema

import (
	"fmt"
	"math"
	"time"

	"github.com/dshills/zellascore/internal/profile"
	"github.com/dshills/zellascore/internal/score"
)

// weightTolerance absorbs float error when summing decimal weights such as 0.1 and 0.15.
const weightTolerance = 1e-9

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidateProfile checks that a profile produces scores in [0, 100].
func ValidateProfile(p *profile.Profile) []ValidationError {
	var errs []ValidationError

	if p.Name == "" {
		errs = append(errs, ValidationError{"name", "required"})
	}
	if !p.Partition.Valid() {
		errs = append(errs, ValidationError{"partition", fmt.Sprintf("invalid partition: %q", p.Partition)})
	}

	weights := []struct {
		path  string
		value float64
	}{
		{"weights.recovery_factor", p.Weights.RecoveryFactor},
		{"weights.win_rate", p.Weights.WinRate},
		{"weights.avg_win_loss", p.Weights.AvgWinLoss},
		{"weights.profit_factor", p.Weights.ProfitFactor},
		{"weights.max_drawdown", p.Weights.MaxDrawdown},
		{"weights.consistency", p.Weights.Consistency},
	}
	for _, w := range weights {
		if math.IsNaN(w.value) || w.value < 0 || w.value > 1 {
			errs = append(errs, ValidationError{w.path, fmt.Sprintf("must be within [0, 1], got %v", w.value)})
		}
	}
	if sum := p.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
		errs = append(errs, ValidationError{"weights", fmt.Sprintf("must sum to 1, got %v", sum)})
	}

	errs = append(errs, validateTable("ratio_table", p.RatioTable)...)
	errs = append(errs, validateTable("recovery_table", p.RecoveryTable)...)

	return errs
}

func validateTable(prefix string, table []score.Threshold) []ValidationError {
	var errs []ValidationError
	if len(table) == 0 {
		return append(errs, ValidationError{prefix, "at least one threshold required"})
	}
	for i, th := range table {
		path := fmt.Sprintf("%s[%d]", prefix, i)
		if math.IsNaN(th.Min) || math.IsInf(th.Min, 0) {
			errs = append(errs, ValidationError{path + ".min", "must be finite"})
		}
		if math.IsNaN(th.Score) || th.Score < 0 || th.Score > 100 {
			errs = append(errs, ValidationError{path + ".score", fmt.Sprintf("must be within [0, 100], got %v", th.Score)})
		}
		if i > 0 && !(th.Min < table[i-1].Min) {
			errs = append(errs, ValidationError{path + ".min", fmt.Sprintf("must be below previous min %v", table[i-1].Min)})
		}
	}
	return errs
}

// closeTimeLayouts are the accepted close-time formats. Day bucketing only
// looks at the first ten characters, so anything starting with a date parses.
var closeTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidateTrades reports records the engine will silently exclude or
// misbucket. It never rejects open trades.
func ValidateTrades(trades []score.Trade) []ValidationError {
	var errs []ValidationError
	for i, t := range trades {
		prefix := fmt.Sprintf("trades[%d]", i)
		if t.RealizedPnL != nil && (math.IsNaN(*t.RealizedPnL) || math.IsInf(*t.RealizedPnL, 0)) {
			errs = append(errs, ValidationError{prefix + ".pnl_amount", "must be finite"})
		}
		if t.ClosePrice != nil && (math.IsNaN(*t.ClosePrice) || math.IsInf(*t.ClosePrice, 0)) {
			errs = append(errs, ValidationError{prefix + ".close_price", "must be finite"})
		}
		if t.CloseTime != "" && !parsesAsCloseTime(t.CloseTime) {
			errs = append(errs, ValidationError{prefix + ".close_time", fmt.Sprintf("not an ISO-8601 date or date-time: %q", t.CloseTime)})
		}
		if t.Closed() && t.CloseTime == "" {
			errs = append(errs, ValidationError{prefix + ".close_time", "missing on a closed trade; excluded from consistency"})
		}
	}
	return errs
}

func parsesAsCloseTime(s string) bool {
	for _, layout := range closeTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
