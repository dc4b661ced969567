package domain

// Player identifies a side. First moves on odd turns.
type Player uint8

const (
	None Player = iota
	First
	Second
)

// Other returns the opposing side. None has no opponent.
func (p Player) Other() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	default:
		return None
	}
}

func (p Player) String() string {
	switch p {
	case First:
		return "X"
	case Second:
		return "O"
	default:
		return ""
	}
}

// ParsePlayer maps "X"/"O" (or "first"/"second") to a Player.
func ParsePlayer(s string) (Player, bool) {
	switch s {
	case "X", "x", "first":
		return First, true
	case "O", "o", "second":
		return Second, true
	}
	return None, false
}

// Mark is the end-of-game highlight of a square.
type Mark uint8

const (
	Neutral Mark = iota
	Win
	Lose
)

func (m Mark) String() string {
	switch m {
	case Win:
		return "win"
	case Lose:
		return "lose"
	default:
		return ""
	}
}

// Cell is the render state of one square, read by presentation layers.
type Cell struct {
	ID       Square
	Occupant Player
	Mark     Mark
	Active   bool
}

// occupy sets the occupant once; later calls are ignored.
func (c *Cell) occupy(p Player) {
	if c.Occupant == None {
		c.Occupant = p
	}
	c.Active = false
}
