// Package match drives a game between two move sources.
package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/opponent"
)

// Source supplies the next move for whichever side it plays. Human sources
// block until input arrives; automated ones compute synchronously.
type Source interface {
	NextMove(ctx context.Context, b *domain.Board) (domain.Square, error)
}

// Rejecter is implemented by sources that can be asked again after an
// illegal move, such as a human retyping a square.
type Rejecter interface {
	Rejected(s domain.Square, err error)
}

// Automated adapts an Opponent to a Source.
type Automated struct {
	Opponent opponent.Opponent
}

func (a Automated) NextMove(ctx context.Context, b *domain.Board) (domain.Square, error) {
	if err := ctx.Err(); err != nil {
		return domain.NoSquare, err
	}
	return a.Opponent.ChooseMove(b)
}

// ErrClosed is returned by Channel once its input is closed.
var ErrClosed = errors.New("match: move source closed")

// Channel reads moves from C. Errors of rejected moves go to Errors when it
// is non-nil; sends are dropped if nobody is listening.
type Channel struct {
	C      <-chan domain.Square
	Errors chan<- error
}

func (c Channel) NextMove(ctx context.Context, _ *domain.Board) (domain.Square, error) {
	select {
	case <-ctx.Done():
		return domain.NoSquare, ctx.Err()
	case s, ok := <-c.C:
		if !ok {
			return domain.NoSquare, ErrClosed
		}
		return s, nil
	}
}

func (c Channel) Rejected(_ domain.Square, err error) {
	if c.Errors == nil {
		return
	}
	select {
	case c.Errors <- err:
	default:
	}
}

// Run plays b to completion. Every move goes through b.ApplyMove, the same
// entry point for humans and opponents. observe, if set, sees the board
// after each accepted move.
func Run(ctx context.Context, b *domain.Board, first, second Source, observe func(*domain.Board)) error {
	for !b.IsOver() {
		player := b.CurrentTurn()
		src := first
		if player == domain.Second {
			src = second
		}
		s, err := src.NextMove(ctx, b)
		if err != nil {
			return fmt.Errorf("%v to move: %w", player, err)
		}
		if err := b.ApplyMove(s, player); err != nil {
			if r, ok := src.(Rejecter); ok && errors.Is(err, domain.ErrIllegalMove) {
				r.Rejected(s, err)
				continue
			}
			return fmt.Errorf("%v at %d: %w", player, s, err)
		}
		if observe != nil {
			observe(b)
		}
	}
	return nil
}
