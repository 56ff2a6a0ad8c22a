package vector

import "sort"

// Scored pairs a stored path with its similarity to the query.
type Scored struct {
	Path  string
	Score float64
}

// Rank sorts in place by descending score, breaking ties by ascending path, and
// returns at most limit entries. A limit <= 0 returns nothing.
func Rank(items []Scored, limit int) []Scored {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Path < items[j].Path
	})
	if limit <= 0 {
		return items[:0]
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
