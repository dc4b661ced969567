// Package opponent implements automated tic-tac-toe players.
package opponent

import (
	"errors"
	"fmt"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

// Errors returned by opponents.
var (
	ErrNotMyTurn          = errors.New("opponent: not my turn")
	ErrInvariantViolation = errors.New("opponent: occupied squares already contain a line")
	ErrUnknownKind        = errors.New("opponent: unknown kind")
)

// Board is the read-only view of a game an opponent needs.
// *domain.Board satisfies it.
type Board interface {
	Free() []domain.Square
	OccupiedBy(p domain.Player) []domain.Square
	FreeSquaresByCategory(c domain.Category) []domain.Square
	CurrentTurn() domain.Player
	TurnNumber() int
	IsOver() bool
}

// Opponent produces one legal move for its own side.
type Opponent interface {
	Self() domain.Player
	ChooseMove(b Board) (domain.Square, error)
}

// Explainer is implemented by opponents that can report why they chose a
// move.
type Explainer interface {
	Decide(b Board) (Decision, error)
}

// Kind names an opponent strategy.
type Kind string

const (
	KindNone   Kind = "none"
	KindRandom Kind = "random"
	KindRules  Kind = "rules"
)

// ParseKind validates s as a Kind. The empty string maps to KindRules.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindRules, nil
	case KindNone, KindRandom, KindRules:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New builds the opponent of kind k playing self. The seed only affects
// KindRandom. KindNone yields a nil Opponent.
func New(k Kind, self domain.Player, seed int64) (Opponent, error) {
	switch k {
	case KindNone:
		return nil, nil
	case KindRandom:
		return NewRandom(self, seed), nil
	case KindRules, "":
		return NewRules(self), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// ready checks the sequencing preconditions shared by every opponent.
func ready(b Board, self domain.Player) error {
	if b.IsOver() {
		return domain.ErrGameOver
	}
	if b.CurrentTurn() != self {
		return ErrNotMyTurn
	}
	return nil
}
