package domain

// Square addresses one of the nine cells, row-major from the top left.
type Square int

// NoSquare is returned where a square is absent.
const NoSquare Square = -1

// Valid reports whether s is on the board.
func (s Square) Valid() bool { return s >= 0 && s < 9 }

// Row returns the 0-based row of s.
func (s Square) Row() int { return int(s) / 3 }

// Col returns the 0-based column of s.
func (s Square) Col() int { return int(s) % 3 }

// Category classifies a square by its position on the grid.
type Category uint8

const (
	Center Category = iota
	Corner
	Edge
)

func (c Category) String() string {
	switch c {
	case Center:
		return "center"
	case Corner:
		return "corner"
	default:
		return "edge"
	}
}

// PositionCategory returns the category of s.
func PositionCategory(s Square) Category {
	switch s {
	case 4:
		return Center
	case 0, 2, 6, 8:
		return Corner
	default:
		return Edge
	}
}

// Opposite returns the corner diagonally across from c, or NoSquare when c
// is not a corner.
func Opposite(c Square) Square {
	if PositionCategory(c) != Corner {
		return NoSquare
	}
	return 8 - c
}

// Line is a winning combination of three squares.
type Line [3]Square

// Lines holds the eight winning lines: rows, then columns, then diagonals.
var Lines = [8]Line{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Contains reports whether s is one of the line's squares.
func (l Line) Contains(s Square) bool {
	return l[0] == s || l[1] == s || l[2] == s
}
