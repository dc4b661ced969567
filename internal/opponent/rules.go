package opponent

import "github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"

// Rule identifies the step of the decision hierarchy that picked a move.
type Rule uint8

const (
	RuleWin Rule = iota + 1
	RuleBlock
	RuleEdgeDefence
	RuleFork
	RuleBlockFork
	RuleCenter
	RuleOppositeCorner
	RuleCorner
	RuleFallback
)

var ruleNames = map[Rule]string{
	RuleWin:            "win",
	RuleBlock:          "block",
	RuleEdgeDefence:    "edge-defence",
	RuleFork:           "fork",
	RuleBlockFork:      "block-fork",
	RuleCenter:         "center",
	RuleOppositeCorner: "opposite-corner",
	RuleCorner:         "corner",
	RuleFallback:       "fallback",
}

func (r Rule) String() string {
	if s, ok := ruleNames[r]; ok {
		return s
	}
	return "unknown"
}

// Decision is a chosen square and the rule that chose it.
type Decision struct {
	Square domain.Square
	Rule   Rule
}

// Rules plays a fixed hierarchy: win, block, the opposite-corner edge
// defence, fork, block-fork, center, opposite corner, corner, then any free
// square. Against any line of play it never loses.
type Rules struct {
	self domain.Player
}

// NewRules returns the rule engine playing self.
func NewRules(self domain.Player) *Rules { return &Rules{self: self} }

func (r *Rules) Self() domain.Player { return r.self }

func (r *Rules) ChooseMove(b Board) (domain.Square, error) {
	d, err := r.Decide(b)
	if err != nil {
		return domain.NoSquare, err
	}
	return d.Square, nil
}

// Decide runs the hierarchy; the first rule that applies wins.
func (r *Rules) Decide(b Board) (Decision, error) {
	if err := ready(b, r.self); err != nil {
		return Decision{Square: domain.NoSquare}, err
	}
	free := b.Free()
	mine := b.OccupiedBy(r.self)
	theirs := b.OccupiedBy(r.self.Other())

	win, err := FindCompletingSquares(mine, free)
	if err != nil {
		return Decision{Square: domain.NoSquare}, err
	}
	if len(win) != 0 {
		return Decision{win[0], RuleWin}, nil
	}

	block, err := FindCompletingSquares(theirs, free)
	if err != nil {
		return Decision{Square: domain.NoSquare}, err
	}
	if len(block) != 0 {
		return Decision{block[0], RuleBlock}, nil
	}

	// Opposite corners against a center reply: blocking the fork by taking a
	// corner hands First a second fork, so force a block with an edge.
	if r.self == domain.Second && b.TurnNumber() == 4 && len(theirs) >= 2 &&
		domain.PositionCategory(theirs[0]) == domain.Corner &&
		domain.PositionCategory(theirs[1]) == domain.Corner {
		if edges := b.FreeSquaresByCategory(domain.Edge); len(edges) != 0 {
			return Decision{edges[0], RuleEdgeDefence}, nil
		}
	}

	if s, ok, err := FindFork(mine, free); err != nil {
		return Decision{Square: domain.NoSquare}, err
	} else if ok {
		return Decision{s, RuleFork}, nil
	}

	if s, ok, err := FindFork(theirs, free); err != nil {
		return Decision{Square: domain.NoSquare}, err
	} else if ok {
		return Decision{s, RuleBlockFork}, nil
	}

	if c := b.FreeSquaresByCategory(domain.Center); len(c) != 0 {
		return Decision{c[0], RuleCenter}, nil
	}

	for _, c := range b.FreeSquaresByCategory(domain.Corner) {
		if contains(theirs, domain.Opposite(c)) {
			return Decision{c, RuleOppositeCorner}, nil
		}
	}

	if c := b.FreeSquaresByCategory(domain.Corner); len(c) != 0 {
		return Decision{c[0], RuleCorner}, nil
	}

	return Decision{free[0], RuleFallback}, nil
}

// FindCompletingSquares returns, ascending, every free square that would
// complete a line for occupied. occupied must not already hold a line.
func FindCompletingSquares(occupied, free []domain.Square) ([]domain.Square, error) {
	if len(domain.FindWins(occupied)) != 0 {
		return nil, ErrInvariantViolation
	}
	return completing(occupied, free), nil
}

// FindFork returns the smallest free square after which occupied would have
// at least two distinct completing squares.
func FindFork(occupied, free []domain.Square) (domain.Square, bool, error) {
	if len(domain.FindWins(occupied)) != 0 {
		return domain.NoSquare, false, ErrInvariantViolation
	}
	trial := make([]domain.Square, len(occupied), len(occupied)+1)
	copy(trial, occupied)
	for _, s := range free {
		withS := append(trial[:len(occupied)], s)
		if len(domain.FindWins(withS)) != 0 {
			// s wins outright; that is a completing square, not a fork.
			continue
		}
		if len(completing(withS, without(free, s))) >= 2 {
			return s, true, nil
		}
	}
	return domain.NoSquare, false, nil
}

func completing(occupied, free []domain.Square) []domain.Square {
	var out []domain.Square
	trial := make([]domain.Square, len(occupied), len(occupied)+1)
	copy(trial, occupied)
	for _, s := range free {
		if len(domain.FindWins(append(trial[:len(occupied)], s))) != 0 {
			out = append(out, s)
		}
	}
	return out
}

func without(in []domain.Square, s domain.Square) []domain.Square {
	out := make([]domain.Square, 0, len(in))
	for _, v := range in {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func contains(in []domain.Square, s domain.Square) bool {
	for _, v := range in {
		if v == s {
			return true
		}
	}
	return false
}
