package wordsearch

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Options controls how a grid is scanned.
type Options struct {
	// Wrap joins opposite edges of the grid, so a walk leaving one side
	// continues from the other.
	Wrap bool `json:"wrap"`

	// Backwards allows the leftward directions in addition to ForwardDirections.
	Backwards bool `json:"backwards"`

	// Workers splits the rows into that many bands scanned concurrently.
	// Zero or one scans sequentially.
	Workers int `json:"workers,omitempty"`
}

// DefaultOptions matches the usual puzzle rules: no wraparound, any direction.
func DefaultOptions() Options {
	return Options{Backwards: true}
}

// hit is a completed word reached while walking from p.Start along p.Dir.
type hit struct {
	word string
	p    Placement
	end  Cell
}

// Scan finds every placement of every word of t in g. It stops early with
// ctx's error when ctx is done.
func (t *Trie) Scan(ctx context.Context, g *Grid, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return make(Result), nil
	}
	dirs := directionsFor(opts.Backwards)
	rows := g.Rows()

	workers := min(opts.Workers, rows)
	if workers <= 1 {
		hits, err := t.scanRows(ctx, g, dirs, opts.Wrap, 0, rows)
		if err != nil {
			return nil, err
		}
		return t.collect(hits), nil
	}

	// Each band keeps its own hits; concatenating them in band order yields
	// the same stream a sequential scan would, so de-duplication below is
	// unaffected by the split.
	bands := make([][]hit, workers)
	per := (rows + workers - 1) / workers
	eg, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo, hi := w*per, min((w+1)*per, rows)
		if lo >= hi {
			continue
		}
		eg.Go(func() error {
			hits, err := t.scanRows(ctx, g, dirs, opts.Wrap, lo, hi)
			bands[w] = hits
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return t.collect(slices.Concat(bands...)), nil
}

func (t *Trie) scanRows(ctx context.Context, g *Grid, dirs []Direction, wrap bool, lo, hi int) ([]hit, error) {
	var hits []hit
	for i := lo; i < hi; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := range g.Cols() {
			start := Cell{Row: i, Col: j}
			for _, d := range dirs {
				head := t.root
				c := start
				for {
					if head = head.next(g.At(c)); head == nil {
						break
					}
					if head.terminal {
						hits = append(hits, hit{word: head.word, p: Placement{Start: start, Dir: d}, end: c})
					}
					c = c.step(d, 1)
					if !g.Contains(c) {
						if !wrap {
							break
						}
						c = g.wrap(c)
					}
				}
			}
		}
	}
	return hits, nil
}

// collect builds the result from hits in scan order. A palindrome reached
// from both ends keeps only the earlier of the two placements.
func (t *Trie) collect(hits []hit) Result {
	res := make(Result)
	palindromes := make(map[string]bool)
	for _, h := range hits {
		set, ok := res[h.word]
		if !ok {
			set = make(PlacementSet)
			res[h.word] = set
			palindromes[h.word] = isPalindrome(h.word)
		}
		if palindromes[h.word] && set.Has(Placement{Start: h.end, Dir: h.p.Dir.Reverse()}) {
			continue
		}
		set[h.p] = struct{}{}
	}
	return res
}
