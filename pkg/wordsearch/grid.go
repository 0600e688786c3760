package wordsearch

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Grid is an immutable rectangular grid of upper-case letters.
type Grid struct {
	cells [][]rune
}

// NewGrid validates rows and returns a grid holding an upper-cased copy of them.
func NewGrid(rows [][]rune) (*Grid, error) {
	if len(rows) == 0 {
		return nil, inputErrorf("grid", -1, "no rows")
	}
	width := len(rows[0])
	if width == 0 {
		return nil, inputErrorf("row", 0, "no columns")
	}

	cells := make([][]rune, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, inputErrorf("row", i, "has %d cells, want %d", len(row), width)
		}
		cells[i] = make([]rune, width)
		for j, r := range row {
			if unicode.IsSpace(r) || r == utf8.RuneError {
				return nil, inputErrorf("cell", i, "column %d holds %q", j, r)
			}
			cells[i][j] = unicode.ToUpper(r)
		}
	}
	return &Grid{cells: cells}, nil
}

// ParseGrid builds a grid from one string per row. Spaces inside a row are
// ignored so "C A T" and "CAT" describe the same row.
func ParseGrid(rows []string) (*Grid, error) {
	rr := make([][]rune, len(rows))
	for i, row := range rows {
		rr[i] = []rune(strings.Join(strings.Fields(row), ""))
	}
	return NewGrid(rr)
}

// GridFromCells builds a grid from cells that each hold exactly one letter,
// the shape scraped puzzle pages produce.
func GridFromCells(cells [][]string) (*Grid, error) {
	rr := make([][]rune, len(cells))
	for i, row := range cells {
		rr[i] = make([]rune, len(row))
		for j, c := range row {
			c = strings.TrimSpace(c)
			if utf8.RuneCountInString(c) != 1 {
				return nil, inputErrorf("cell", i, "column %d holds %q, want a single letter", j, c)
			}
			r, _ := utf8.DecodeRuneInString(c)
			rr[i][j] = r
		}
	}
	return NewGrid(rr)
}

func (g *Grid) Rows() int {
	return len(g.cells)
}

func (g *Grid) Cols() int {
	return len(g.cells[0])
}

// At returns the letter at c. c must be inside the grid.
func (g *Grid) At(c Cell) rune {
	return g.cells[c.Row][c.Col]
}

// Contains reports whether c lies inside the grid.
func (g *Grid) Contains(c Cell) bool {
	return c.Row >= 0 && c.Row < len(g.cells) && c.Col >= 0 && c.Col < len(g.cells[0])
}

// wrap reduces each coordinate of c modulo its own axis length.
func (g *Grid) wrap(c Cell) Cell {
	return Cell{Row: mod(c.Row, g.Rows()), Col: mod(c.Col, g.Cols())}
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// Strings returns one string per row.
func (g *Grid) Strings() []string {
	rows := make([]string, len(g.cells))
	for i, row := range g.cells {
		rows[i] = string(row)
	}
	return rows
}

func (g *Grid) Repr() string {
	return strings.Join(g.Strings(), "\n")
}

func (g *Grid) DebugString() string {
	return fmt.Sprintf("Grid{rows: %d, cols: %d, grid: %v}", g.Rows(), g.Cols(), g.Strings())
}
