// Package arena plays a series of automated games between two strategies.
package arena

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/match"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/opponent"
)

// Factory builds a fresh opponent for one game.
type Factory func(self domain.Player, seed int64) opponent.Opponent

// FactoryFor returns a Factory for kind k.
func FactoryFor(k opponent.Kind) (Factory, error) {
	if k == opponent.KindNone {
		return nil, fmt.Errorf("%w: arena needs an automated player", opponent.ErrUnknownKind)
	}
	if _, err := opponent.New(k, domain.First, 0); err != nil {
		return nil, err
	}
	return func(self domain.Player, seed int64) opponent.Opponent {
		o, _ := opponent.New(k, self, seed)
		return o
	}, nil
}

// Stats counts results from A's point of view. Safe for concurrent use.
type Stats struct {
	aWins uint32
	bWins uint32
	draws uint32
}

func (s *Stats) AWins() int { return int(atomic.LoadUint32(&s.aWins)) }
func (s *Stats) BWins() int { return int(atomic.LoadUint32(&s.bWins)) }
func (s *Stats) Draws() int { return int(atomic.LoadUint32(&s.draws)) }
func (s *Stats) Total() int { return s.AWins() + s.BWins() + s.Draws() }

// Summary is a point-in-time copy of Stats.
type Summary struct {
	Games int
	AWins int
	BWins int
	Draws int
}

// Arena runs Games games of A against B over Workers goroutines. A moves
// first in even-numbered games, B in odd ones.
type Arena struct {
	A, B    Factory
	Games   int
	Workers int
	Seed    int64

	// OnGame, if set, is called after each game. It may be called from
	// several goroutines at once.
	OnGame func(game int, b *domain.Board)

	Stats
}

// Run plays all games and returns the totals. A cancelled ctx stops the
// workers after their current game.
func (a *Arena) Run(ctx context.Context) (Summary, error) {
	workers := a.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range jobs {
				if err := a.play(ctx, g); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

Loop:
	for g := 0; g < a.Games; g++ {
		select {
		case <-ctx.Done():
			break Loop
		case err := <-errs:
			close(jobs)
			wg.Wait()
			return a.summary(), err
		case jobs <- g:
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return a.summary(), err
	default:
	}
	return a.summary(), ctx.Err()
}

func (a *Arena) play(ctx context.Context, g int) error {
	seed := a.Seed + int64(g)
	aSide, bSide := domain.First, domain.Second
	if g%2 == 1 {
		aSide, bSide = bSide, aSide
	}
	pa := match.Automated{Opponent: a.A(aSide, seed)}
	pb := match.Automated{Opponent: a.B(bSide, seed+1)}

	b := domain.NewBoard()
	var err error
	if aSide == domain.First {
		err = match.Run(ctx, b, pa, pb, nil)
	} else {
		err = match.Run(ctx, b, pb, pa, nil)
	}
	if err != nil {
		return fmt.Errorf("game %d: %w", g, err)
	}

	switch b.Winner() {
	case aSide:
		atomic.AddUint32(&a.aWins, 1)
	case bSide:
		atomic.AddUint32(&a.bWins, 1)
	default:
		atomic.AddUint32(&a.draws, 1)
	}
	if a.OnGame != nil {
		a.OnGame(g, b)
	}
	return nil
}

func (a *Arena) summary() Summary {
	return Summary{Games: a.Total(), AWins: a.AWins(), BWins: a.BWins(), Draws: a.Draws()}
}
