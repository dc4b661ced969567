package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/opponent"
)

func TestRunRulesAgainstRulesDraws(t *testing.T) {
	b := domain.NewBoard()
	moves := 0
	err := Run(context.Background(), b,
		Automated{opponent.NewRules(domain.First)},
		Automated{opponent.NewRules(domain.Second)},
		func(*domain.Board) { moves++ })
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !b.IsDraw() || moves != 9 {
		t.Fatalf("expected a 9-move draw, got draw=%v moves=%d", b.IsDraw(), moves)
	}
}

func TestRunChannelRetriesIllegalMoves(t *testing.T) {
	in := make(chan domain.Square, 8)
	errs := make(chan error, 8)
	// 4 is taken by the engine's reply to 0, so it is rejected and retried.
	for _, s := range []domain.Square{0, 4, 9, 1, 2} {
		in <- s
	}
	close(in)

	b := domain.NewBoard()
	err := Run(context.Background(), b,
		Channel{C: in, Errors: errs},
		Automated{opponent.NewRules(domain.Second)},
		nil)
	if !errors.Is(err, ErrClosed) && !b.IsOver() {
		t.Fatalf("expected game over or closed source, got %v", err)
	}
	close(errs)
	var rejected []error
	for e := range errs {
		rejected = append(rejected, e)
	}
	if len(rejected) < 2 {
		t.Fatalf("expected at least two rejected moves, got %v", rejected)
	}
	if !errors.Is(rejected[0], domain.ErrOccupied) || !errors.Is(rejected[1], domain.ErrOutOfBounds) {
		t.Fatalf("unexpected rejections %v", rejected)
	}
	if b.Winner() == domain.First {
		t.Fatalf("human side must not beat the engine")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	b := domain.NewBoard()
	err := Run(ctx, b, Channel{C: make(chan domain.Square)}, Automated{opponent.NewRandom(domain.Second, 1)}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if b.TurnNumber() != 1 {
		t.Fatalf("expected no moves applied, turn %d", b.TurnNumber())
	}
}

func TestRunPropagatesOpponentErrors(t *testing.T) {
	b := domain.NewBoard()
	// Both sources claim First; the second one is asked out of turn.
	err := Run(context.Background(), b,
		Automated{opponent.NewRules(domain.First)},
		Automated{opponent.NewRules(domain.First)},
		nil)
	if !errors.Is(err, opponent.ErrNotMyTurn) {
		t.Fatalf("expected ErrNotMyTurn, got %v", err)
	}
}
