package score

import "sort"

// NoGroup labels trades whose group key is empty.
const NoGroup = "(none)"

// ByGroup scores each group of trades separately. Trades keep their
// relative order inside a group. Groups are sorted by key.
func ByGroup(trades []Trade, key func(Trade) string, opts Options) []GroupScore {
	if key == nil {
		return nil
	}
	groups := make(map[string][]Trade)
	for _, t := range trades {
		k := key(t)
		if k == "" {
			k = NoGroup
		}
		groups[k] = append(groups[k], t)
	}

	result := make([]GroupScore, 0, len(groups))
	for k, ts := range groups {
		result = append(result, GroupScore{
			Key:       k,
			Trades:    len(ts),
			Breakdown: Compute(ts, opts),
		})
	}
	SortGroups(result)
	return result
}

// SortGroups orders groups by key, keeping the unlabeled group last.
func SortGroups(groups []GroupScore) {
	sort.SliceStable(groups, func(i, j int) bool {
		if (groups[i].Key == NoGroup) != (groups[j].Key == NoGroup) {
			return groups[j].Key == NoGroup
		}
		return groups[i].Key < groups[j].Key
	})
}
