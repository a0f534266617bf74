package score

// Partition selects how closed trades are split into wins and losses.
type Partition string

const (
	// PartitionStrict counts pnl > 0 as a win and pnl < 0 as a loss.
	PartitionStrict Partition = "strict"
	// PartitionLegacy places every non-zero pnl in both buckets, matching
	// the scores historically shown by the trading dashboard.
	PartitionLegacy Partition = "legacy"
)

func (p Partition) Valid() bool {
	switch p {
	case PartitionStrict, PartitionLegacy:
		return true
	}
	return false
}

func (p Partition) classify(pnl float64) (win, loss bool) {
	if p == PartitionLegacy {
		return pnl != 0, pnl != 0
	}
	return pnl > 0, pnl < 0
}

// GroupKey selects the trade attribute used by ByGroup.
type GroupKey string

const (
	GroupNone     GroupKey = "none"
	GroupSymbol   GroupKey = "symbol"
	GroupStrategy GroupKey = "strategy"
)

func (g GroupKey) Valid() bool {
	switch g {
	case GroupNone, GroupSymbol, GroupStrategy:
		return true
	}
	return false
}

// KeyFunc returns the extractor for g, or nil for GroupNone and unknown keys.
func (g GroupKey) KeyFunc() func(Trade) string {
	switch g {
	case GroupSymbol:
		return func(t Trade) string { return t.Symbol }
	case GroupStrategy:
		return func(t Trade) string { return t.Strategy }
	}
	return nil
}
