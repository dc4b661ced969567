// Command tictactoe plays against the engine in a terminal, or runs two
// engines against each other with -arena.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/arena"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/logging"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/match"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/opponent"
)

// human reads moves typed on the terminal.
type human struct {
	match.Channel
	out io.Writer
}

func (h human) NextMove(ctx context.Context, b *domain.Board) (domain.Square, error) {
	fmt.Fprintf(h.out, "%v to move (0-8): ", b.CurrentTurn())
	return h.Channel.NextMove(ctx, b)
}

func (h human) Rejected(_ domain.Square, err error) {
	fmt.Fprintf(h.out, "  %v\n", err)
}

// readSquares feeds one square per input line into a channel, closed at
// EOF. Unparseable lines become NoSquare so the board rejects them.
func readSquares(r io.Reader) <-chan domain.Square {
	ch := make(chan domain.Square)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			n, err := strconv.Atoi(line)
			if err != nil {
				n = int(domain.NoSquare)
			}
			ch <- domain.Square(n)
		}
	}()
	return ch
}

func main() {
	kind := flag.String("opponent", "rules", "opponent: rules|random|none")
	side := flag.String("side", "X", "side you play: X|O")
	seed := flag.Int64("seed", 0, "random seed (0 uses the clock)")
	games := flag.Int("arena", 0, "play N engine games instead of a human game")
	versus := flag.String("versus", "random", "second engine in arena mode")
	workers := flag.Int("workers", 4, "arena worker goroutines")
	level := flag.String("log-level", "warn", "debug|info|warn|error")
	flag.Parse()

	log, err := logging.New(*level, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *games > 0 {
		if err := runArena(ctx, log, *kind, *versus, *games, *workers, *seed); err != nil {
			log.Error("arena", zap.Error(err))
			os.Exit(1)
		}
		return
	}
	if err := play(ctx, os.Stdin, os.Stdout, *kind, *side, *seed); err != nil && !errors.Is(err, match.ErrClosed) {
		log.Error("game", zap.Error(err))
		os.Exit(1)
	}
}

func play(ctx context.Context, in io.Reader, w io.Writer, kind, side string, seed int64) error {
	k, err := opponent.ParseKind(kind)
	if err != nil {
		return err
	}
	me, ok := domain.ParsePlayer(side)
	if !ok {
		return fmt.Errorf("unknown side %q", side)
	}
	out := termenv.NewOutput(w)
	you := human{Channel: match.Channel{C: readSquares(in)}, out: w}

	var first, second match.Source = you, you
	if k != opponent.KindNone {
		opp, err := opponent.New(k, me.Other(), seed)
		if err != nil {
			return err
		}
		if me == domain.First {
			second = match.Automated{Opponent: opp}
		} else {
			first = match.Automated{Opponent: opp}
		}
	}

	b := domain.NewBoard()
	fmt.Fprint(w, renderBoard(out, b))
	err = match.Run(ctx, b, first, second, func(b *domain.Board) {
		fmt.Fprint(w, "\n"+renderBoard(out, b))
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, result(b))
	return nil
}

func runArena(ctx context.Context, log *zap.Logger, a, b string, games, workers int, seed int64) error {
	ka, err := opponent.ParseKind(a)
	if err != nil {
		return err
	}
	kb, err := opponent.ParseKind(b)
	if err != nil {
		return err
	}
	fa, err := arena.FactoryFor(ka)
	if err != nil {
		return err
	}
	fb, err := arena.FactoryFor(kb)
	if err != nil {
		return err
	}
	ar := &arena.Arena{
		A: fa, B: fb,
		Games:   games,
		Workers: workers,
		Seed:    seed,
		OnGame: func(g int, board *domain.Board) {
			log.Debug("game finished", zap.Int("game", g), zap.String("result", result(board)))
		},
	}
	start := time.Now()
	sum, err := ar.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("arena done", zap.Duration("elapsed", time.Since(start)))
	fmt.Printf("%s vs %s: %d games, %s wins %d, %s wins %d, draws %d\n",
		ka, kb, sum.Games, ka, sum.AWins, kb, sum.BWins, sum.Draws)
	return nil
}
