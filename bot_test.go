package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

type drag struct {
	from, to wordsearch.Cell
}

type fakeDragger struct {
	drags  []drag
	failAt int
}

func (f *fakeDragger) Drag(_ context.Context, from, to wordsearch.Cell) error {
	if f.failAt > 0 && len(f.drags)+1 == f.failAt {
		return errors.New("tab crashed")
	}
	f.drags = append(f.drags, drag{from, to})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPlayPuzzle(t *testing.T) {
	p := &Puzzle{
		Rows:  []string{"CAT", "XOX", "GOD"},
		Words: []string{"DOG", "COW", "CAT"},
	}
	d := &fakeDragger{}

	report, err := playPuzzle(context.Background(), d, p, wordsearch.DefaultOptions(), discardLogger())
	if err != nil {
		t.Fatalf("playPuzzle: %v", err)
	}

	want := []drag{
		{from: wordsearch.Cell{Row: 2, Col: 2}, to: wordsearch.Cell{Row: 2, Col: 0}},
		{from: wordsearch.Cell{Row: 0, Col: 0}, to: wordsearch.Cell{Row: 0, Col: 2}},
	}
	if diff := cmp.Diff(want, d.drags, cmp.AllowUnexported(drag{})); diff != "" {
		t.Errorf("drags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"DOG", "CAT"}, report.Selected); diff != "" {
		t.Errorf("selected mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"COW"}, report.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayPuzzle_SkipsWrappedWords(t *testing.T) {
	p := &Puzzle{
		Rows:  []string{"TXXCA", "XXXXX", "XXXXX"},
		Words: []string{"CAT"},
		Wrap:  true,
	}
	d := &fakeDragger{}

	report, err := playPuzzle(context.Background(), d, p, p.Options(), discardLogger())
	if err != nil {
		t.Fatalf("playPuzzle: %v", err)
	}
	if len(d.drags) != 0 {
		t.Errorf("expected no drags, got %+v", d.drags)
	}
	if diff := cmp.Diff([]string{"CAT"}, report.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayPuzzle_DragError(t *testing.T) {
	p := &Puzzle{
		Rows:  []string{"CAT", "XOX", "DOG"},
		Words: []string{"CAT", "DOG"},
	}
	d := &fakeDragger{failAt: 2}

	report, err := playPuzzle(context.Background(), d, p, wordsearch.DefaultOptions(), discardLogger())
	if err == nil {
		t.Fatal("expected drag error")
	}
	if diff := cmp.Diff([]string{"CAT"}, report.Selected); diff != "" {
		t.Errorf("selected mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayPuzzle_InvalidGrid(t *testing.T) {
	p := &Puzzle{Rows: []string{"AB", "C"}, Words: []string{"A"}}
	_, err := playPuzzle(context.Background(), &fakeDragger{}, p, wordsearch.DefaultOptions(), discardLogger())

	var inputErr *wordsearch.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected *InputError, got %v", err)
	}
}

func TestPlayPuzzle_DragsRepeatedWordOnce(t *testing.T) {
	p := &Puzzle{Rows: []string{"CAT", "XXX"}, Words: []string{"CAT", "cat"}}
	d := &fakeDragger{}

	report, err := playPuzzle(context.Background(), d, p, p.Options(), discardLogger())
	if err != nil {
		t.Fatalf("playPuzzle: %v", err)
	}
	if len(d.drags) != 1 {
		t.Fatalf("expected one drag, got %+v", d.drags)
	}
	if diff := cmp.Diff([]string{"CAT"}, report.Selected); diff != "" {
		t.Errorf("selected mismatch (-want +got):\n%s", diff)
	}
}
