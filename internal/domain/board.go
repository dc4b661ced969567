package domain

// Status is the state of a Board's lifecycle.
type Status uint8

const (
	InProgress Status = iota
	Won
	Drawn
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Drawn:
		return "drawn"
	default:
		return "in_progress"
	}
}

// Board holds the state of one game. It changes only through ApplyMove and
// is not safe for concurrent use; callers that share it must serialize.
type Board struct {
	first    []Square // insertion order
	second   []Square // insertion order
	free     []Square // ascending
	turn     Player
	number   int
	previous Square
	wins     []Line
	over     bool
	draw     bool
	cells    [9]Cell
}

// NewBoard returns an empty board with First to move on turn 1.
func NewBoard() *Board {
	b := &Board{
		first:    make([]Square, 0, 5),
		second:   make([]Square, 0, 4),
		free:     make([]Square, 0, 9),
		turn:     First,
		number:   1,
		previous: NoSquare,
	}
	for i := range b.cells {
		b.free = append(b.free, Square(i))
		b.cells[i] = Cell{ID: Square(i), Active: true}
	}
	return b
}

// ApplyMove places player's mark on s. All checks run before any state is
// touched, so a rejected move leaves the board unchanged.
func (b *Board) ApplyMove(s Square, player Player) error {
	if b.over {
		return ErrGameOver
	}
	if !s.Valid() {
		return ErrOutOfBounds
	}
	idx := b.freeIndex(s)
	if idx < 0 {
		return ErrOccupied
	}
	if player != b.turn {
		return ErrNotYourTurn
	}

	if player == First {
		b.first = append(b.first, s)
	} else {
		b.second = append(b.second, s)
	}
	b.free = append(b.free[:idx], b.free[idx+1:]...)
	b.previous = s
	b.number++
	b.cells[s].occupy(player)

	b.wins = append(FindWins(b.first), FindWins(b.second)...)
	if len(b.wins) != 0 {
		b.over = true
	} else if len(b.free) == 0 {
		b.over = true
		b.draw = true
	}

	b.turn = b.turn.Other()
	if b.over {
		b.finish()
	}
	return nil
}

// finish deactivates every square and marks them for a win.
func (b *Board) finish() {
	for i := range b.cells {
		c := &b.cells[i]
		c.Active = false
		switch {
		case b.draw:
			c.Mark = Neutral
		case b.inWinningLine(c.ID):
			c.Mark = Win
		default:
			c.Mark = Lose
		}
	}
}

func (b *Board) inWinningLine(s Square) bool {
	for _, ln := range b.wins {
		if ln.Contains(s) {
			return true
		}
	}
	return false
}

func (b *Board) freeIndex(s Square) int {
	for i, f := range b.free {
		if f == s {
			return i
		}
	}
	return -1
}

// FindWins returns every line fully contained in occupied, in Lines order.
// Duplicate squares in occupied are ignored.
func FindWins(occupied []Square) []Line {
	var set [9]bool
	for _, s := range occupied {
		if s.Valid() {
			set[s] = true
		}
	}
	var out []Line
	for _, ln := range Lines {
		if set[ln[0]] && set[ln[1]] && set[ln[2]] {
			out = append(out, ln)
		}
	}
	return out
}

// FreeSquaresByCategory returns the free squares of category c, ascending.
func (b *Board) FreeSquaresByCategory(c Category) []Square {
	var out []Square
	for _, s := range b.free {
		if PositionCategory(s) == c {
			out = append(out, s)
		}
	}
	return out
}

// IsFree reports whether s is unoccupied.
func (b *Board) IsFree(s Square) bool { return b.freeIndex(s) >= 0 }

// OccupiedByFirst returns First's squares in move order.
func (b *Board) OccupiedByFirst() []Square { return cloneSquares(b.first) }

// OccupiedBySecond returns Second's squares in move order.
func (b *Board) OccupiedBySecond() []Square { return cloneSquares(b.second) }

// OccupiedBy returns p's squares in move order.
func (b *Board) OccupiedBy(p Player) []Square {
	switch p {
	case First:
		return b.OccupiedByFirst()
	case Second:
		return b.OccupiedBySecond()
	}
	return nil
}

// Free returns the unoccupied squares in ascending order.
func (b *Board) Free() []Square { return cloneSquares(b.free) }

// CurrentTurn returns the side to move.
func (b *Board) CurrentTurn() Player { return b.turn }

// TurnNumber starts at 1 and grows by one per accepted move.
func (b *Board) TurnNumber() int { return b.number }

// PreviousMove returns the last accepted square; ok is false before the
// first move.
func (b *Board) PreviousMove() (s Square, ok bool) {
	return b.previous, b.previous != NoSquare
}

// WinPattern returns the completed lines; empty unless the game was won.
func (b *Board) WinPattern() []Line {
	if len(b.wins) == 0 {
		return nil
	}
	out := make([]Line, len(b.wins))
	copy(out, b.wins)
	return out
}

func (b *Board) IsOver() bool { return b.over }
func (b *Board) IsDraw() bool { return b.draw }

// Status derives the lifecycle state.
func (b *Board) Status() Status {
	switch {
	case b.draw:
		return Drawn
	case b.over:
		return Won
	default:
		return InProgress
	}
}

// Winner returns the side that completed a line, or None.
func (b *Board) Winner() Player {
	if len(b.wins) == 0 {
		return None
	}
	if len(FindWins(b.first)) != 0 {
		return First
	}
	return Second
}

// Cells returns the render state of all nine squares.
func (b *Board) Cells() [9]Cell { return b.cells }

// Cell returns the render state of s.
func (b *Board) Cell(s Square) (Cell, bool) {
	if !s.Valid() {
		return Cell{}, false
	}
	return b.cells[s], true
}

// Clone returns an independent copy of b.
func (b *Board) Clone() *Board {
	cp := *b
	cp.first = append(make([]Square, 0, 5), b.first...)
	cp.second = append(make([]Square, 0, 4), b.second...)
	cp.free = append(make([]Square, 0, 9), b.free...)
	cp.wins = b.WinPattern()
	return &cp
}

func cloneSquares(in []Square) []Square {
	out := make([]Square, len(in))
	copy(out, in)
	return out
}
