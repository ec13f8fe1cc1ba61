package ranking

import (
	"cmp"
	"slices"
)

// Rankable is an entity ordered by like count
type Rankable interface {
	// RankKey returns the like count and the id used to break ties.
	RankKey() (likes int64, id int64)
}

// Compare orders a before b when it has more likes, or equal likes and a lower id.
func Compare[T Rankable](a, b T) int {
	al, aid := a.RankKey()
	bl, bid := b.RankKey()
	if c := cmp.Compare(bl, al); c != 0 {
		return c
	}
	return cmp.Compare(aid, bid)
}

// Sort orders items in place by likes desc, id asc.
func Sort[T Rankable](items []T) {
	slices.SortFunc(items, Compare[T])
}

// Top returns a sorted copy holding at most limit items.
// A negative limit is treated as zero and yields an empty, non-nil slice.
func Top[T Rankable](items []T, limit int) []T {
	limit = max(limit, 0)
	sorted := slices.Clone(items)
	if sorted == nil {
		sorted = []T{}
	}
	Sort(sorted)
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}
