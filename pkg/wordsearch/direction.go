package wordsearch

import "fmt"

// Cell is a zero-based (row, col) grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func (c Cell) step(d Direction, n int) Cell {
	return Cell{Row: c.Row + d.DRow*n, Col: c.Col + d.DCol*n}
}

// Direction is a unit step on the grid. Both components are in {-1, 0, 1}
// and at least one of them is non-zero.
type Direction struct {
	DRow int `json:"d_row"`
	DCol int `json:"d_col"`
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	return Direction{DRow: -d.DRow, DCol: -d.DCol}
}

func (d Direction) String() string {
	return fmt.Sprintf("(%d,%d)", d.DRow, d.DCol)
}

var (
	Up        = Direction{DRow: -1}
	UpRight   = Direction{DRow: -1, DCol: 1}
	Right     = Direction{DCol: 1}
	DownRight = Direction{DRow: 1, DCol: 1}
	Down      = Direction{DRow: 1}
	DownLeft  = Direction{DRow: 1, DCol: -1}
	Left      = Direction{DCol: -1}
	UpLeft    = Direction{DRow: -1, DCol: -1}
)

// Scan order: DRow ascending, then DCol ascending.
var (
	// AllDirections is used when words may also read backwards.
	AllDirections = []Direction{UpLeft, Up, UpRight, Left, Right, DownLeft, Down, DownRight}

	// ForwardDirections drops every direction that moves left.
	ForwardDirections = []Direction{Up, UpRight, Right, Down, DownRight}
)

func directionsFor(backwards bool) []Direction {
	if backwards {
		return AllDirections
	}
	return ForwardDirections
}
