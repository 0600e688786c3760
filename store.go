package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errPuzzleNotFound = errors.New("puzzle not found")

// Store holds all puzzles and sessions in memory.
type Store struct {
	mu       sync.RWMutex
	puzzles  map[string]*Puzzle
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		puzzles:  make(map[string]*Puzzle),
		sessions: make(map[string]*Session),
	}
}

// SavePuzzle stores a validated puzzle and returns it with a generated ID.
func (s *Store) SavePuzzle(p *Puzzle) *Puzzle {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()

	s.mu.Lock()
	s.puzzles[p.ID] = p
	s.mu.Unlock()

	return p
}

// GetPuzzle returns a puzzle by ID, or nil if not found.
func (s *Store) GetPuzzle(id string) *Puzzle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puzzles[id]
}

// ListPuzzles returns all puzzles, most recent first.
func (s *Store) ListPuzzles() []*Puzzle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Puzzle, 0, len(s.puzzles))
	for _, p := range s.puzzles {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b *Puzzle) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list
}

// CreateSession solves a stored puzzle and opens a session on it.
func (s *Store) CreateSession(ctx context.Context, puzzleID string) (*Session, error) {
	puzzle := s.GetPuzzle(puzzleID)
	if puzzle == nil {
		return nil, fmt.Errorf("%w: %s", errPuzzleNotFound, puzzleID)
	}

	session, err := newSession(ctx, uuid.NewString(), puzzle)
	if err != nil {
		return nil, fmt.Errorf("solve puzzle %s: %w", puzzleID, err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// GetSession returns a session by ID, or nil if not found.
func (s *Store) GetSession(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// ListSessions returns all sessions, most recent first.
func (s *Store) ListSessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		list = append(list, session)
	}
	slices.SortFunc(list, func(a, b *Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list
}
