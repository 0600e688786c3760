package main

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

// Player represents a connected player.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// FoundWord records who found a word and where.
type FoundWord struct {
	Word    string    `json:"word"`
	Pseudo  string    `json:"pseudo"`
	Match   Match     `json:"match"`
	FoundAt time.Time `json:"found_at"`
}

// Session is a collaborative solve of one puzzle. Players drag across the
// grid and each selection is checked against the puzzle's solution.
type Session struct {
	ID        string                `json:"id"`
	PuzzleID  string                `json:"puzzle_id"`
	Players   map[string]*Player    `json:"players"`
	Found     map[string]*FoundWord `json:"found"`
	CreatedAt time.Time             `json:"created_at"`

	grid     *wordsearch.Grid
	words    []string // distinct ignoring case, first spelling kept
	targets  []string // words a player can drag, which completion requires
	solution wordsearch.Result
	wrap     bool
	mu       sync.Mutex
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

var errNotALine = errors.New("selection is not a straight line")

func newSession(ctx context.Context, id string, p *Puzzle) (*Session, error) {
	g, res, err := p.Solve(ctx, p.Options())
	if err != nil {
		return nil, err
	}
	plan, _, _ := planSelections(g, p.Words, res, p.Wrap)
	targets := make([]string, len(plan))
	for i, sel := range plan {
		targets[i] = sel.Word
	}
	return &Session{
		ID:        id,
		PuzzleID:  p.ID,
		Players:   make(map[string]*Player),
		Found:     make(map[string]*FoundWord),
		CreatedAt: time.Now(),
		grid:      g,
		words:     distinctWords(p.Words),
		targets:   targets,
		solution:  res,
		wrap:      p.Wrap,
	}, nil
}

// AddPlayer adds a player to the session and returns the player.
func (s *Session) AddPlayer(pseudo string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.Players[pseudo]; ok {
		return p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(s.Players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	s.Players[pseudo] = p
	return p
}

// RemovePlayer removes a player from the session.
func (s *Session) RemovePlayer(pseudo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Players, pseudo)
}

// SelectResult is the outcome of one drag.
type SelectResult struct {
	Word      *FoundWord // nil when the drag spells no word
	First     bool       // this drag found Word
	Completed bool       // this drag found the last word left
}

// Select checks a drag from start to end, in either direction, against the
// solution. Placements that wrap around the grid cannot be dragged and
// never match.
func (s *Session) Select(pseudo string, start, end wordsearch.Cell) (SelectResult, error) {
	if !s.grid.Contains(start) || !s.grid.Contains(end) {
		return SelectResult{}, &wordsearch.InputError{Field: "cell", Index: -1, Reason: "selection outside the grid"}
	}
	length, ok := lineLength(start, end)
	if !ok {
		return SelectResult{}, errNotALine
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.words {
		if len([]rune(w)) != length {
			continue
		}
		set, ok := s.solution.Lookup(w)
		if !ok {
			continue
		}
		for _, p := range set.Sorted() {
			m := newMatch(s.grid, w, p, s.wrap)
			if m.Wraps {
				continue
			}
			if !(m.Start == start && m.End == end) && !(m.Start == end && m.End == start) {
				continue
			}
			if fw, ok := s.Found[w]; ok {
				return SelectResult{Word: fw}, nil
			}
			fw := &FoundWord{Word: w, Pseudo: pseudo, Match: m, FoundAt: time.Now()}
			s.Found[w] = fw
			return SelectResult{Word: fw, First: true, Completed: s.completed()}, nil
		}
	}
	return SelectResult{}, nil
}

// Completed reports whether every word a player can drag was found. Words
// missing from the grid, and words placed only across its edges, do not
// count.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed()
}

func (s *Session) completed() bool {
	for _, w := range s.targets {
		if _, ok := s.Found[w]; !ok {
			return false
		}
	}
	return true
}

// SessionState is a point-in-time copy of a session's mutable fields.
type SessionState struct {
	Players []Player    `json:"players"`
	Found   []FoundWord `json:"found"`
}

// Snapshot returns a copy of the players and found words.
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionState{
		Players: make([]Player, 0, len(s.Players)),
		Found:   make([]FoundWord, 0, len(s.Found)),
	}
	for _, p := range s.Players {
		st.Players = append(st.Players, *p)
	}
	slices.SortFunc(st.Players, func(a, b Player) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})
	for _, w := range s.words {
		if fw, ok := s.Found[w]; ok {
			st.Found = append(st.Found, *fw)
		}
	}
	return st
}

// lineLength returns the number of cells on the straight line from a to b,
// or false when a and b are not on a row, column or diagonal.
func lineLength(a, b wordsearch.Cell) (int, bool) {
	dr, dc := abs(b.Row-a.Row), abs(b.Col-a.Col)
	if dr != 0 && dc != 0 && dr != dc {
		return 0, false
	}
	return max(dr, dc) + 1, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
