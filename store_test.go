package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

// newTestPuzzle has CAT and DOG across, COG on the diagonal and no COW.
func newTestPuzzle() *Puzzle {
	return &Puzzle{
		Title:     "animals",
		Rows:      []string{"CAT", "XOX", "DOG"},
		Words:     []string{"CAT", "DOG", "COG", "COW"},
		Backwards: true,
	}
}

func cell(row, col int) wordsearch.Cell {
	return wordsearch.Cell{Row: row, Col: col}
}

func TestSaveAndGetPuzzle(t *testing.T) {
	s := NewStore()
	p := s.SavePuzzle(newTestPuzzle())

	if p.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	got := s.GetPuzzle(p.ID)
	if got == nil {
		t.Fatal("expected to find puzzle")
	}
	if got.Title != "animals" {
		t.Fatalf("expected title animals, got %q", got.Title)
	}

	if s.GetPuzzle("nonexistent") != nil {
		t.Fatal("expected nil for unknown ID")
	}
}

func TestListPuzzles(t *testing.T) {
	s := NewStore()
	first := s.SavePuzzle(newTestPuzzle())
	second := s.SavePuzzle(newTestPuzzle())

	list := s.ListPuzzles()
	if len(list) != 2 {
		t.Fatalf("expected 2 puzzles, got %d", len(list))
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct IDs")
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatal("expected most recent puzzle first")
	}
}

func TestCreateSession(t *testing.T) {
	s := NewStore()
	p := s.SavePuzzle(newTestPuzzle())

	session, err := s.CreateSession(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.PuzzleID != p.ID {
		t.Fatalf("expected puzzle ID %s, got %s", p.ID, session.PuzzleID)
	}
	if s.GetSession(session.ID) != session {
		t.Fatal("session not stored")
	}
	if len(s.ListSessions()) != 1 {
		t.Fatal("expected one session")
	}

	if _, err := s.CreateSession(context.Background(), "nonexistent"); !errors.Is(err, errPuzzleNotFound) {
		t.Fatalf("expected errPuzzleNotFound, got %v", err)
	}
}

func TestSessionAddPlayer(t *testing.T) {
	s := NewStore()
	session, _ := s.CreateSession(context.Background(), s.SavePuzzle(newTestPuzzle()).ID)

	alice := session.AddPlayer("Alice")
	bob := session.AddPlayer("Bob")
	again := session.AddPlayer("Alice")

	if alice != again {
		t.Fatal("joining twice should return the same player")
	}
	if alice.Color == bob.Color {
		t.Fatal("players should get different colors")
	}

	session.RemovePlayer("Alice")
	st := session.Snapshot()
	if len(st.Players) != 1 || st.Players[0].Pseudo != "Bob" {
		t.Fatalf("expected only Bob left, got %+v", st.Players)
	}
}

func TestSessionSelect(t *testing.T) {
	s := NewStore()
	session, _ := s.CreateSession(context.Background(), s.SavePuzzle(newTestPuzzle()).ID)

	sel, err := session.Select("Alice", cell(0, 0), cell(0, 2))
	if err != nil || sel.Word == nil || !sel.First {
		t.Fatalf("expected Alice to find CAT first, got %+v err=%v", sel, err)
	}
	if sel.Word.Word != "CAT" || sel.Word.Match.End != cell(0, 2) {
		t.Fatalf("unexpected match %+v", sel.Word)
	}

	// Dragging the other way selects the same word, and the first finder keeps it.
	sel, err = session.Select("Bob", cell(0, 2), cell(0, 0))
	if err != nil || sel.Word == nil || sel.First {
		t.Fatalf("expected CAT already found, got %+v err=%v", sel, err)
	}
	if sel.Word.Pseudo != "Alice" {
		t.Fatalf("expected Alice to keep CAT, got %s", sel.Word.Pseudo)
	}

	// Diagonal, dragged from the last letter.
	sel, err = session.Select("Bob", cell(2, 2), cell(0, 0))
	if err != nil || sel.Word == nil || sel.Word.Word != "COG" {
		t.Fatalf("expected COG, got %+v err=%v", sel, err)
	}

	// A straight line that is not a word.
	sel, err = session.Select("Bob", cell(0, 0), cell(0, 1))
	if err != nil || sel.Word != nil {
		t.Fatalf("expected no word, got %+v err=%v", sel, err)
	}

	if _, err := session.Select("Bob", cell(0, 0), cell(1, 2)); !errors.Is(err, errNotALine) {
		t.Fatalf("expected errNotALine, got %v", err)
	}

	var inputErr *wordsearch.InputError
	if _, err := session.Select("Bob", cell(0, 0), cell(5, 5)); !errors.As(err, &inputErr) {
		t.Fatalf("expected *InputError, got %v", err)
	}
}

func TestSessionCompleted(t *testing.T) {
	s := NewStore()
	session, _ := s.CreateSession(context.Background(), s.SavePuzzle(newTestPuzzle()).ID)

	session.Select("Alice", cell(0, 0), cell(0, 2))
	if sel, _ := session.Select("Alice", cell(2, 0), cell(2, 2)); sel.Completed {
		t.Fatal("DOG should not complete the session")
	}
	if session.Completed() {
		t.Fatal("session should not be completed before COG is found")
	}

	// COW is not in the grid, so finding the other three completes the session.
	sel, _ := session.Select("Bob", cell(0, 0), cell(2, 2))
	if !sel.Completed || !session.Completed() {
		t.Fatal("expected session to be completed")
	}
	// Finding an already found word again does not report completion twice.
	if sel, _ := session.Select("Bob", cell(0, 0), cell(2, 2)); sel.Completed {
		t.Fatal("completion reported twice")
	}

	st := session.Snapshot()
	got := make([]string, len(st.Found))
	for i, fw := range st.Found {
		got[i] = fw.Word
	}
	if fmt.Sprint(got) != "[CAT DOG COG]" {
		t.Fatalf("expected found words in list order, got %v", got)
	}
}

func TestSessionCompletedDuplicateCasing(t *testing.T) {
	s := NewStore()
	p := s.SavePuzzle(&Puzzle{Rows: []string{"CAT", "XXX"}, Words: []string{"CAT", "cat"}})
	session, err := s.CreateSession(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sel, err := session.Select("Alice", cell(0, 0), cell(0, 2))
	if err != nil || !sel.First || sel.Word.Word != "CAT" {
		t.Fatalf("expected Alice to find CAT, got %+v err=%v", sel, err)
	}
	if !sel.Completed || !session.Completed() {
		t.Fatal("one find should complete a list that repeats a word in another case")
	}

	sel, _ = session.Select("Bob", cell(0, 2), cell(0, 0))
	if sel.First {
		t.Fatal("the second casing should not be findable separately")
	}
	if st := session.Snapshot(); len(st.Found) != 1 {
		t.Fatalf("expected one found word, got %+v", st.Found)
	}
}

func TestSessionCompletedIgnoresWrappedWords(t *testing.T) {
	s := NewStore()
	// CAT only exists across the right edge, so nobody can drag it.
	p := s.SavePuzzle(&Puzzle{Rows: []string{"TXXCA", "DOGXX"}, Words: []string{"CAT", "DOG"}, Wrap: true})
	session, err := s.CreateSession(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Completed() {
		t.Fatal("session should not start completed")
	}

	if sel, _ := session.Select("Alice", cell(0, 3), cell(0, 0)); sel.Word != nil {
		t.Fatalf("a wrapped placement should not be selectable, got %+v", sel.Word)
	}

	sel, err := session.Select("Alice", cell(1, 0), cell(1, 2))
	if err != nil || !sel.First {
		t.Fatalf("expected DOG, got %+v err=%v", sel, err)
	}
	if !sel.Completed || !session.Completed() {
		t.Fatal("expected DOG to complete the session")
	}
}

func TestSnapshotCopy(t *testing.T) {
	s := NewStore()
	session, _ := s.CreateSession(context.Background(), s.SavePuzzle(newTestPuzzle()).ID)
	session.AddPlayer("Alice")
	session.Select("Alice", cell(0, 0), cell(0, 2))

	st := session.Snapshot()
	st.Players[0].Pseudo = "Mallory"
	st.Found[0].Pseudo = "Mallory"

	again := session.Snapshot()
	if again.Players[0].Pseudo != "Alice" || again.Found[0].Pseudo != "Alice" {
		t.Fatal("Snapshot should return a copy, not a reference")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	session, _ := s.CreateSession(context.Background(), s.SavePuzzle(newTestPuzzle()).ID)

	var wg sync.WaitGroup
	var firsts sync.Map
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pseudo := fmt.Sprintf("player%d", i)
			session.AddPlayer(pseudo)
			if sel, _ := session.Select(pseudo, cell(0, 0), cell(0, 2)); sel.First {
				firsts.Store(sel.Word.Pseudo, true)
			}
			session.Snapshot()
			session.Completed()
			s.ListPuzzles()
		}(i)
	}
	wg.Wait()

	n := 0
	firsts.Range(func(_, _ any) bool { n++; return true })
	if n != 1 {
		t.Fatalf("expected exactly one first finder, got %d", n)
	}
}
