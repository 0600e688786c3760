package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

// Puzzle is a word-search grid with the words to find in it.
type Puzzle struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Rows      []string  `json:"rows"`
	Words     []string  `json:"words"`
	Wrap      bool      `json:"wrap"`
	Backwards bool      `json:"backwards"`
	Source    string    `json:"source,omitempty"` // json, image, text, hcl, html or browser
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the grid and words and normalises Rows to upper case
// without spaces.
func (p *Puzzle) Validate() error {
	g, err := p.Grid()
	if err != nil {
		return err
	}
	for i, w := range p.Words {
		w = strings.TrimSpace(w)
		if w == "" {
			return &wordsearch.InputError{Field: "word", Index: i, Reason: "empty"}
		}
		p.Words[i] = w
	}
	p.Rows = g.Strings()
	return nil
}

// Grid parses Rows.
func (p *Puzzle) Grid() (*wordsearch.Grid, error) {
	return wordsearch.ParseGrid(p.Rows)
}

// Options returns the scan options the puzzle was published with.
func (p *Puzzle) Options() wordsearch.Options {
	return wordsearch.Options{Wrap: p.Wrap, Backwards: p.Backwards}
}

// Solve scans the puzzle grid for its words.
func (p *Puzzle) Solve(ctx context.Context, opts wordsearch.Options) (*wordsearch.Grid, wordsearch.Result, error) {
	g, err := p.Grid()
	if err != nil {
		return nil, nil, err
	}
	res, err := wordsearch.SolveContext(ctx, g, p.Words, opts)
	if err != nil {
		return nil, nil, err
	}
	return g, res, nil
}

// Match is a placement expanded with its end cell, as clients draw it.
type Match struct {
	Start     wordsearch.Cell      `json:"start"`
	End       wordsearch.Cell      `json:"end"`
	Direction wordsearch.Direction `json:"direction"`
	Wraps     bool                 `json:"wraps,omitempty"`
}

func newMatch(g *wordsearch.Grid, word string, p wordsearch.Placement, wrap bool) Match {
	n := len([]rune(word))
	return Match{
		Start:     p.Start,
		End:       p.End(g, n, wrap),
		Direction: p.Dir,
		Wraps:     wrap && p.Wraps(g, n),
	}
}

// Solution lists every match of every word, plus the words that are missing.
type Solution struct {
	Found   map[string][]Match `json:"found"`
	Missing []string           `json:"missing"`
}

func newSolution(g *wordsearch.Grid, words []string, res wordsearch.Result, wrap bool) *Solution {
	sol := &Solution{
		Found:   make(map[string][]Match),
		Missing: []string{},
	}
	for _, w := range words {
		set, ok := res.Lookup(w)
		if !ok {
			sol.Missing = append(sol.Missing, w)
			continue
		}
		matches := make([]Match, 0, len(set))
		for _, p := range set.Sorted() {
			matches = append(matches, newMatch(g, w, p, wrap))
		}
		sol.Found[w] = matches
	}
	return sol
}

// Selection is one drag from the first to the last letter of a word.
type Selection struct {
	Word  string
	Match Match
}

// distinctWords drops words equal to an earlier one ignoring case, so the
// first spelling stands for all of them.
func distinctWords(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		key := strings.ToUpper(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

// straightMatch returns the earliest placement of word that does not wrap
// around the grid, the only kind a player can drag.
func straightMatch(g *wordsearch.Grid, word string, set wordsearch.PlacementSet, wrap bool) (Match, bool) {
	for _, p := range set.Sorted() {
		if m := newMatch(g, word, p, wrap); !m.Wraps {
			return m, true
		}
	}
	return Match{}, false
}

// planSelections picks one match per distinct word, in word-list order.
// Words with no match are returned as missing; words whose only matches wrap
// around the grid cannot be dragged in a straight line and are returned as
// skipped.
func planSelections(g *wordsearch.Grid, words []string, res wordsearch.Result, wrap bool) (plan []Selection, missing, skipped []string) {
	for _, w := range distinctWords(words) {
		set, ok := res.Lookup(w)
		if !ok {
			missing = append(missing, w)
			continue
		}
		m, ok := straightMatch(g, w, set, wrap)
		if !ok {
			skipped = append(skipped, w)
			continue
		}
		plan = append(plan, Selection{Word: w, Match: m})
	}
	return plan, missing, skipped
}

func (s Selection) String() string {
	return fmt.Sprintf("%s %s..%s", s.Word, s.Match.Start, s.Match.End)
}
