package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

// defaultGridCols is the row width of the puzzle site's fixed-size grid.
const defaultGridCols = 10

const (
	wordListSelector = "div[class*='words']"
	gridSelector     = "div[class*='grid']"
)

// ParseHTMLPuzzle reads a saved puzzle page. The word list is the text of
// every leaf element under the first words container; the grid is the text
// of every leaf element under the first grid container, cols letters per row.
func ParseHTMLPuzzle(r io.Reader, cols int) (*Puzzle, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	wordList := doc.Find(wordListSelector).First()
	if wordList.Length() == 0 {
		return nil, fmt.Errorf("no element matches %s", wordListSelector)
	}
	grid := doc.Find(gridSelector).First()
	if grid.Length() == 0 {
		return nil, fmt.Errorf("no element matches %s", gridSelector)
	}

	return puzzleFromCells(leafTexts(wordList), leafTexts(grid), cols, "html")
}

func leafTexts(sel *goquery.Selection) []string {
	var out []string
	sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// puzzleFromCells reshapes a flat, row-major letter list into a puzzle.
func puzzleFromCells(words, letters []string, cols int, source string) (*Puzzle, error) {
	if cols <= 0 {
		cols = defaultGridCols
	}
	if len(letters) == 0 {
		return nil, &wordsearch.InputError{Field: "grid", Index: -1, Reason: "no letters"}
	}

	cells := make([][]string, 0, (len(letters)+cols-1)/cols)
	for start := 0; start < len(letters); start += cols {
		cells = append(cells, letters[start:min(start+cols, len(letters))])
	}
	g, err := wordsearch.GridFromCells(cells)
	if err != nil {
		return nil, err
	}

	p := &Puzzle{Rows: g.Strings(), Words: words, Backwards: true, Source: source}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
