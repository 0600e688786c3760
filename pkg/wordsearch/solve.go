// Package wordsearch finds words hidden in a letter grid.
//
// Words are indexed in a Trie and every straight line of the grid is walked
// from every cell in every allowed direction, following trie transitions
// until they run out. Grids may optionally wrap around their edges.
package wordsearch

import (
	"context"
	"strings"
)

// Result maps each word found, spelled as given, to its placements. Words
// that were not found are absent; a present word always has at least one
// placement.
type Result map[string]PlacementSet

// Solve validates words, indexes them and scans g.
func Solve(g *Grid, words []string, opts Options) (Result, error) {
	return SolveContext(context.Background(), g, words, opts)
}

// SolveContext is Solve with cancellation: a scan still running when ctx is
// done returns ctx's error and no result.
func SolveContext(ctx context.Context, g *Grid, words []string, opts Options) (Result, error) {
	if g == nil {
		return nil, inputErrorf("grid", -1, "missing")
	}
	t, err := Build(words)
	if err != nil {
		return nil, err
	}
	return t.Scan(ctx, g, opts)
}

// Lookup returns the placements of word. Words that differ from a found
// word only in case resolve to it.
func (r Result) Lookup(word string) (PlacementSet, bool) {
	if set, ok := r[word]; ok {
		return set, true
	}
	for w, set := range r {
		if strings.EqualFold(w, word) {
			return set, true
		}
	}
	return nil, false
}

// Found returns the words of order that were found, in order.
func (r Result) Found(order []string) []string {
	var found []string
	for _, w := range order {
		if _, ok := r.Lookup(w); ok {
			found = append(found, w)
		}
	}
	return found
}

// Missing returns the words of order that were not found, in order.
func (r Result) Missing(order []string) []string {
	var missing []string
	for _, w := range order {
		if _, ok := r.Lookup(w); !ok {
			missing = append(missing, w)
		}
	}
	return missing
}

// Count returns the total number of placements.
func (r Result) Count() int {
	n := 0
	for _, set := range r {
		n += len(set)
	}
	return n
}
