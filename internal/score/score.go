package score

import "math"

// winRateTarget is the win rate (percent) at which the win-rate sub-score saturates.
const winRateTarget = 60.0

// Options controls the partition rule, weights and threshold tables used by Compute.
// Zero fields fall back to DefaultOptions.
type Options struct {
	Partition     Partition
	Weights       Weights
	RatioTable    []Threshold
	RecoveryTable []Threshold
}

func DefaultOptions() Options {
	return Options{
		Partition:     PartitionStrict,
		Weights:       DefaultWeights(),
		RatioTable:    RatioTable(),
		RecoveryTable: RecoveryTable(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if !o.Partition.Valid() {
		o.Partition = def.Partition
	}
	if o.Weights == (Weights{}) {
		o.Weights = def.Weights
	}
	if len(o.RatioTable) == 0 {
		o.RatioTable = def.RatioTable
	}
	if len(o.RecoveryTable) == 0 {
		o.RecoveryTable = def.RecoveryTable
	}
	return o
}

// Calculate returns the Zella score of trades, an integer in [0, 100],
// using the default weights, tables and strict partition.
func Calculate(trades []Trade) int {
	return Compute(trades, DefaultOptions()).Score
}

// Compute scores trades and returns every intermediate metric.
// Only closed trades take part. Drawdown follows the order of trades,
// so callers must pass them in the order P&L was realized.
// A set without closed trades yields a zero Breakdown.
func Compute(trades []Trade, opts Options) Breakdown {
	opts = opts.withDefaults()

	closed := closedTrades(trades)
	if len(closed) == 0 {
		return Breakdown{}
	}

	b := Breakdown{ClosedTrades: len(closed)}
	for _, t := range closed {
		pnl := *t.RealizedPnL
		win, loss := opts.Partition.classify(pnl)
		if win {
			b.Wins++
			b.GrossProfit += math.Abs(pnl)
		}
		if loss {
			b.Losses++
			b.GrossLoss += math.Abs(pnl)
		}
	}
	b.NetProfit = b.GrossProfit - b.GrossLoss

	if b.Wins > 0 {
		b.AvgWin = b.GrossProfit / float64(b.Wins)
	}
	if b.Losses > 0 {
		b.AvgLoss = b.GrossLoss / float64(b.Losses)
	}
	if b.AvgLoss != 0 {
		b.WinLossRatio = b.AvgWin / b.AvgLoss
	}
	b.AvgWinLossScore = Lookup(b.WinLossRatio, opts.RatioTable)

	b.WinRate = float64(b.Wins) / float64(b.ClosedTrades) * 100
	b.WinRateScore = math.Min(b.WinRate/winRateTarget*100, 100)

	b.MaxDrawdown, b.Peak = drawdown(closed)
	if b.Peak > 0 {
		b.MaxDrawdownScore = math.Max(100-b.MaxDrawdown/b.Peak*100, 0)
	}

	if b.GrossLoss != 0 {
		b.ProfitFactor = b.GrossProfit / b.GrossLoss
	}
	b.ProfitFactorScore = Lookup(b.ProfitFactor, opts.RatioTable)

	if b.MaxDrawdown != 0 {
		b.RecoveryFactor = b.NetProfit / b.MaxDrawdown
	}
	b.RecoveryFactorScore = Lookup(b.RecoveryFactor, opts.RecoveryTable)

	d := daily(closed)
	b.TradingDays = d.days
	b.TotalDailyProfit = d.total
	b.AvgDailyProfit = d.mean
	b.DailyStdDev = d.stdDev
	if d.total > 0 {
		b.ConsistencyRatio = d.stdDev / d.total
	}
	b.ConsistencyScore = math.Max(100-b.ConsistencyRatio*100, 0)

	b.Score = clamp(opts.Weights.apply(b))
	return b
}

// closedTrades keeps trades with both a finite realized P&L and a close price.
func closedTrades(trades []Trade) []Trade {
	var closed []Trade
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		if math.IsNaN(*t.RealizedPnL) || math.IsInf(*t.RealizedPnL, 0) {
			continue
		}
		closed = append(closed, t)
	}
	return closed
}

// drawdown walks the cumulative P&L in input order. The running peak starts at zero.
func drawdown(closed []Trade) (maxDrawdown, peak float64) {
	var cum float64
	for _, t := range closed {
		cum += *t.RealizedPnL
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown, peak
}

type dailyStats struct {
	days   int
	total  float64
	mean   float64
	stdDev float64
}

// daily sums P&L per close day and returns the mean and sample standard
// deviation of those sums. Trades without a close time are skipped.
func daily(closed []Trade) dailyStats {
	sums := make(map[string]float64)
	var keys []string
	for _, t := range closed {
		if t.CloseTime == "" {
			continue
		}
		k := DayKey(t.CloseTime)
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}
		sums[k] += *t.RealizedPnL
	}

	var s dailyStats
	s.days = len(keys)
	if s.days == 0 {
		return s
	}
	for _, k := range keys {
		s.total += sums[k]
	}
	s.mean = s.total / float64(s.days)
	if s.days > 1 {
		var sq float64
		for _, k := range keys {
			d := sums[k] - s.mean
			sq += d * d
		}
		s.stdDev = math.Sqrt(sq / float64(s.days-1))
	}
	return s
}

// DayKey returns the calendar-day bucket of an ISO-8601 timestamp: its first ten characters.
func DayKey(closeTime string) string {
	if len(closeTime) > 10 {
		return closeTime[:10]
	}
	return closeTime
}

func clamp(total float64) int {
	if math.IsNaN(total) {
		return 0
	}
	s := int(math.Round(total))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
