package wordsearch

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"unicode"
)

// Placement is one occurrence of a word: where it starts and which way it reads.
type Placement struct {
	Start Cell      `json:"start"`
	Dir   Direction `json:"direction"`
}

func (p Placement) String() string {
	return fmt.Sprintf("%s->%s", p.Start, p.Dir)
}

// Cells returns the n cells covered by a word of length n at p. When wrap
// is set, coordinates are reduced modulo each axis of g.
func (p Placement) Cells(g *Grid, n int, wrap bool) []Cell {
	cells := make([]Cell, n)
	for k := range n {
		c := p.Start.step(p.Dir, k)
		if wrap {
			c = g.wrap(c)
		}
		cells[k] = c
	}
	return cells
}

// End returns the cell holding the last letter of a word of length n at p.
func (p Placement) End(g *Grid, n int, wrap bool) Cell {
	c := p.Start.step(p.Dir, n-1)
	if wrap {
		c = g.wrap(c)
	}
	return c
}

// Wraps reports whether a word of length n at p leaves the grid before it
// ends, i.e. whether it can only be read with wraparound.
func (p Placement) Wraps(g *Grid, n int) bool {
	return !g.Contains(p.Start.step(p.Dir, n-1))
}

// Mirror returns the placement that covers the same cells in reverse.
func (p Placement) Mirror(g *Grid, n int, wrap bool) Placement {
	return Placement{Start: p.End(g, n, wrap), Dir: p.Dir.Reverse()}
}

// Verify reports whether reading len(word) cells from p spells word,
// ignoring case. Without wrap, a placement that leaves the grid never matches.
func Verify(g *Grid, word string, p Placement, wrap bool) bool {
	letters := []rune(word)
	if len(letters) == 0 {
		return false
	}
	for k, want := range letters {
		c := p.Start.step(p.Dir, k)
		if wrap {
			c = g.wrap(c)
		} else if !g.Contains(c) {
			return false
		}
		if g.At(c) != unicode.ToUpper(want) {
			return false
		}
	}
	return true
}

// PlacementSet is a set of distinct placements of one word.
type PlacementSet map[Placement]struct{}

func (s PlacementSet) Has(p Placement) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the placements in scan order: start row, start column,
// then direction table order.
func (s PlacementSet) Sorted() []Placement {
	return slices.SortedFunc(maps.Keys(s), comparePlacements)
}

// First returns the earliest placement in scan order.
func (s PlacementSet) First() (Placement, bool) {
	if len(s) == 0 {
		return Placement{}, false
	}
	return slices.MinFunc(slices.Collect(maps.Keys(s)), comparePlacements), true
}

func comparePlacements(a, b Placement) int {
	return cmp.Or(
		cmp.Compare(a.Start.Row, b.Start.Row),
		cmp.Compare(a.Start.Col, b.Start.Col),
		cmp.Compare(a.Dir.DRow, b.Dir.DRow),
		cmp.Compare(a.Dir.DCol, b.Dir.DCol),
	)
}
