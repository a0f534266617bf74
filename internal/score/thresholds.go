package score

// Threshold maps every value >= Min to Score.
type Threshold struct {
	Min   float64 `json:"min" yaml:"min"`
	Score float64 `json:"score" yaml:"score"`
}

// Lookup returns the score of the first entry whose Min is <= value.
// Tables are ordered by descending Min. No match yields 0.
func Lookup(value float64, table []Threshold) float64 {
	for _, th := range table {
		if value >= th.Min {
			return th.Score
		}
	}
	return 0
}

// RatioTable grades both the average win/loss ratio and the profit factor.
func RatioTable() []Threshold {
	return []Threshold{
		{Min: 2.6, Score: 100},
		{Min: 2.4, Score: 90},
		{Min: 2.2, Score: 80},
		{Min: 2.0, Score: 70},
		{Min: 1.9, Score: 60},
		{Min: 1.8, Score: 50},
		{Min: 0, Score: 20},
	}
}

// RecoveryTable grades the recovery factor.
func RecoveryTable() []Threshold {
	return []Threshold{
		{Min: 3.5, Score: 100},
		{Min: 3.0, Score: 70},
		{Min: 2.5, Score: 60},
		{Min: 2.0, Score: 50},
		{Min: 1.5, Score: 30},
		{Min: 1.0, Score: 1},
		{Min: 0, Score: 0},
	}
}

// Weights are the contribution of each sub-score to the final score.
type Weights struct {
	RecoveryFactor float64 `json:"recovery_factor" yaml:"recovery_factor"`
	WinRate        float64 `json:"win_rate" yaml:"win_rate"`
	AvgWinLoss     float64 `json:"avg_win_loss" yaml:"avg_win_loss"`
	ProfitFactor   float64 `json:"profit_factor" yaml:"profit_factor"`
	MaxDrawdown    float64 `json:"max_drawdown" yaml:"max_drawdown"`
	Consistency    float64 `json:"consistency" yaml:"consistency"`
}

func DefaultWeights() Weights {
	return Weights{
		RecoveryFactor: 0.10,
		WinRate:        0.15,
		AvgWinLoss:     0.20,
		ProfitFactor:   0.25,
		MaxDrawdown:    0.20,
		Consistency:    0.10,
	}
}

func (w Weights) Sum() float64 {
	return w.RecoveryFactor + w.WinRate + w.AvgWinLoss + w.ProfitFactor + w.MaxDrawdown + w.Consistency
}

func (w Weights) apply(b Breakdown) float64 {
	return w.RecoveryFactor*b.RecoveryFactorScore +
		w.WinRate*b.WinRateScore +
		w.AvgWinLoss*b.AvgWinLossScore +
		w.ProfitFactor*b.ProfitFactorScore +
		w.MaxDrawdown*b.MaxDrawdownScore +
		w.Consistency*b.ConsistencyScore
}
