// Package score computes the Zella score of a set of trade records.
package score

// Trade is a single trade record as supplied by a trade source.
// Nil pointers mean the field is absent, which is distinct from zero.
type Trade struct {
	RealizedPnL *float64 `json:"pnl_amount"`
	ClosePrice  *float64 `json:"close_price"`
	CloseTime   string   `json:"close_time,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	Strategy    string   `json:"strategy,omitempty"`
}

// Closed reports whether the trade carries both a realized P&L and a close price.
func (t Trade) Closed() bool {
	return t.RealizedPnL != nil && t.ClosePrice != nil
}

// Breakdown holds every intermediate metric and sub-score behind a score.
type Breakdown struct {
	Score int `json:"score"`

	ClosedTrades int `json:"closed_trades"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`

	GrossProfit    float64 `json:"gross_profit"`
	GrossLoss      float64 `json:"gross_loss"`
	NetProfit      float64 `json:"net_profit"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	WinLossRatio   float64 `json:"win_loss_ratio"`
	WinRate        float64 `json:"win_rate"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	Peak           float64 `json:"peak"`
	ProfitFactor   float64 `json:"profit_factor"`
	RecoveryFactor float64 `json:"recovery_factor"`

	TradingDays      int     `json:"trading_days"`
	TotalDailyProfit float64 `json:"total_daily_profit"`
	AvgDailyProfit   float64 `json:"avg_daily_profit"`
	DailyStdDev      float64 `json:"daily_std_dev"`
	ConsistencyRatio float64 `json:"consistency_ratio"`

	AvgWinLossScore     float64 `json:"avg_win_loss_score"`
	WinRateScore        float64 `json:"win_rate_score"`
	MaxDrawdownScore    float64 `json:"max_drawdown_score"`
	ProfitFactorScore   float64 `json:"profit_factor_score"`
	RecoveryFactorScore float64 `json:"recovery_factor_score"`
	ConsistencyScore    float64 `json:"consistency_score"`
}

// GroupScore is the breakdown of one group of trades.
type GroupScore struct {
	Key       string    `json:"key"`
	Trades    int       `json:"trades"`
	Breakdown Breakdown `json:"breakdown"`
}

// Report is the top-level output object.
type Report struct {
	Tool    string       `json:"tool"`
	Version string       `json:"version"`
	Input   Input        `json:"input"`
	Summary Breakdown    `json:"summary"`
	Groups  []GroupScore `json:"groups,omitempty"`
	Meta    Meta         `json:"meta"`
}

// Input describes where the trades came from and how they were scored.
type Input struct {
	Source     string    `json:"source"`
	SourceHash string    `json:"source_hash,omitempty"`
	Profile    string    `json:"profile"`
	Partition  Partition `json:"partition"`
	GroupBy    GroupKey  `json:"group_by,omitempty"`
	Trades     int       `json:"trades"`
}

// Meta records the weights applied and any non-fatal validation findings.
type Meta struct {
	Weights  Weights  `json:"weights"`
	Warnings []string `json:"warnings,omitempty"`
}
