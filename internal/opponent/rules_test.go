package opponent

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

// boardAfter plays moves alternately from an empty board.
func boardAfter(t *testing.T, moves ...domain.Square) *domain.Board {
	t.Helper()
	b := domain.NewBoard()
	for i, m := range moves {
		if err := b.ApplyMove(m, b.CurrentTurn()); err != nil {
			t.Fatalf("move %d (%d) failed: %v", i, m, err)
		}
	}
	return b
}

func TestFindCompletingSquares(t *testing.T) {
	cases := []struct {
		name  string
		moves []domain.Square
		side  domain.Player
		want  []domain.Square
	}{
		{"single center", []domain.Square{4}, domain.First, nil},
		{"blocked row", []domain.Square{5, 1, 0}, domain.First, nil},
		{"row gap", []domain.Square{0, 5, 2}, domain.First, []domain.Square{1}},
		{"two threats smallest first", []domain.Square{0, 4, 5, 7, 2}, domain.First, []domain.Square{1, 8}},
		{"col and diag", []domain.Square{0, 4, 5, 7, 8}, domain.First, []domain.Square{2}},
		{"second side", []domain.Square{0, 4, 8, 1}, domain.Second, []domain.Square{7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := boardAfter(t, tc.moves...)
			got, err := FindCompletingSquares(b.OccupiedBy(tc.side), b.Free())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCompletingSquareSmallestWins(t *testing.T) {
	b := boardAfter(t, 0, 4, 5, 3, 2)
	// First threatens both 1 and 8; Second has no win, so it blocks the smaller.
	d, err := NewRules(domain.Second).Decide(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != (Decision{1, RuleBlock}) {
		t.Fatalf("expected block at 1, got %+v", d)
	}
}

func TestHelpersRejectWonSets(t *testing.T) {
	won := []domain.Square{0, 1, 2, 5}
	free := []domain.Square{3, 4, 6, 7, 8}
	if _, err := FindCompletingSquares(won, free); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if _, _, err := FindFork(won, free); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	full := []domain.Square{0, 2, 4, 6, 8}
	if _, err := FindCompletingSquares(full, nil); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation for double win, got %v", err)
	}
}

func TestFindFork(t *testing.T) {
	cases := []struct {
		name  string
		moves []domain.Square
		want  domain.Square
		ok    bool
	}{
		{"no fork from center", []domain.Square{4}, domain.NoSquare, false},
		{"no fork on full board", []domain.Square{0, 1, 2, 5, 3, 6, 4, 8}, domain.NoSquare, false},
		{"edge and corner", []domain.Square{5, 1, 0}, 3, true},
		{"opposite corners", []domain.Square{2, 4, 6}, 0, true},
		{"corners around edge", []domain.Square{0, 1, 2}, 4, true},
		{"late fork", []domain.Square{2, 4, 6, 0, 1}, 8, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := boardAfter(t, tc.moves...)
			got, ok, err := FindFork(b.OccupiedByFirst(), b.Free())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want || ok != tc.ok {
				t.Fatalf("expected (%d, %v), got (%d, %v)", tc.want, tc.ok, got, ok)
			}
		})
	}
}

func TestDecisionHierarchy(t *testing.T) {
	cases := []struct {
		name  string
		self  domain.Player
		moves []domain.Square
		want  Decision
	}{
		{"open with center", domain.First, nil, Decision{4, RuleCenter}},
		{"answer corner with center", domain.Second, []domain.Square{0}, Decision{4, RuleCenter}},
		{"answer center with corner", domain.Second, []domain.Square{4}, Decision{0, RuleCorner}},
		{"win before block", domain.First, []domain.Square{4, 0, 5, 1}, Decision{3, RuleWin}},
		{"win over blocking two threats", domain.Second, []domain.Square{0, 4, 5, 7, 2}, Decision{1, RuleWin}},
		{"block", domain.Second, []domain.Square{4, 0, 5}, Decision{3, RuleBlock}},
		{"block before fork", domain.First, []domain.Square{0, 1, 2, 7}, Decision{4, RuleBlock}},
		{"block on late turn", domain.Second, []domain.Square{4, 1, 8, 0, 2}, Decision{5, RuleBlock}},
		{"edge after opposite corners", domain.Second, []domain.Square{0, 4, 8}, Decision{1, RuleEdgeDefence}},
		{"fork", domain.First, []domain.Square{0, 1, 4, 8}, Decision{3, RuleFork}},
		{"block fork", domain.Second, []domain.Square{1, 4, 5}, Decision{2, RuleBlockFork}},
		{"block fork late", domain.Second, []domain.Square{0, 1, 2, 4, 7}, Decision{6, RuleBlockFork}},
		{"opposite corner", domain.First, []domain.Square{4, 2}, Decision{6, RuleOppositeCorner}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := boardAfter(t, tc.moves...)
			got, err := NewRules(tc.self).Decide(b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
			if s, err := NewRules(tc.self).ChooseMove(b); err != nil || s != tc.want.Square {
				t.Fatalf("ChooseMove disagrees with Decide: %d %v", s, err)
			}
		})
	}
}

func TestSequencingErrors(t *testing.T) {
	b := boardAfter(t)
	if _, err := NewRules(domain.Second).ChooseMove(b); !errors.Is(err, ErrNotMyTurn) {
		t.Fatalf("expected ErrNotMyTurn, got %v", err)
	}
	if _, err := NewRandom(domain.Second, 1).ChooseMove(b); !errors.Is(err, ErrNotMyTurn) {
		t.Fatalf("expected ErrNotMyTurn from random, got %v", err)
	}
	b = boardAfter(t, 0, 3, 1, 4, 2)
	if _, err := NewRules(domain.Second).ChooseMove(b); !errors.Is(err, domain.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestRandomPlaysFreeSquares(t *testing.T) {
	r := NewRandom(domain.First, 42)
	for game := 0; game < 200; game++ {
		b := domain.NewBoard()
		other := NewRandom(domain.Second, int64(game))
		for !b.IsOver() {
			var o Opponent = r
			if b.CurrentTurn() == domain.Second {
				o = other
			}
			s, err := o.ChooseMove(b)
			if err != nil {
				t.Fatalf("choose: %v", err)
			}
			if err := b.ApplyMove(s, o.Self()); err != nil {
				t.Fatalf("random chose illegal square %d: %v", s, err)
			}
		}
	}
}

// exhaust plays every adversary reply against the rule engine and reports
// the number of finished games and adversary wins.
func exhaust(t *testing.T, b *domain.Board, ai *Rules) (games, losses int) {
	t.Helper()
	if b.IsOver() {
		if b.Winner() == ai.Self().Other() {
			return 1, 1
		}
		return 1, 0
	}
	if b.CurrentTurn() == ai.Self() {
		s, err := ai.ChooseMove(b)
		if err != nil {
			t.Fatalf("choose at turn %d: %v", b.TurnNumber(), err)
		}
		next := b.Clone()
		if err := next.ApplyMove(s, ai.Self()); err != nil {
			t.Fatalf("engine chose illegal square %d: %v", s, err)
		}
		return exhaust(t, next, ai)
	}
	for _, s := range b.Free() {
		next := b.Clone()
		if err := next.ApplyMove(s, next.CurrentTurn()); err != nil {
			t.Fatalf("adversary move %d: %v", s, err)
		}
		g, l := exhaust(t, next, ai)
		games += g
		losses += l
	}
	return games, losses
}

func TestRulesNeverLoseExhaustive(t *testing.T) {
	for _, self := range []domain.Player{domain.First, domain.Second} {
		games, losses := exhaust(t, domain.NewBoard(), NewRules(self))
		if losses != 0 {
			t.Fatalf("engine as %v lost %d of %d lines", self, losses, games)
		}
		t.Logf("engine as %v: %d lines, no losses", self, games)
	}
}

func TestRulesNeverLoseRandomized(t *testing.T) {
	const trials = 10000
	rng := rand.New(rand.NewSource(2024))
	order := []domain.Square{0, 1, 2, 3, 4, 5, 6, 7, 8}
	for _, self := range []domain.Player{domain.First, domain.Second} {
		ai := NewRules(self)
		for i := 0; i < trials; i++ {
			rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
			b := domain.NewBoard()
			for !b.IsOver() {
				if b.CurrentTurn() == self {
					s, err := ai.ChooseMove(b)
					if err != nil {
						t.Fatalf("choose: %v", err)
					}
					if err := b.ApplyMove(s, self); err != nil {
						t.Fatalf("engine move: %v", err)
					}
					continue
				}
				for _, s := range order {
					if b.IsFree(s) {
						if err := b.ApplyMove(s, self.Other()); err != nil {
							t.Fatalf("adversary move: %v", err)
						}
						break
					}
				}
			}
			if len(domain.FindWins(b.OccupiedBy(self.Other()))) != 0 {
				t.Fatalf("engine as %v lost: first=%v second=%v", self, b.OccupiedByFirst(), b.OccupiedBySecond())
			}
		}
	}
}

func TestNewKinds(t *testing.T) {
	o, err := New(KindRules, domain.Second, 0)
	if err != nil || o == nil || o.Self() != domain.Second {
		t.Fatalf("expected rules opponent, got %v %v", o, err)
	}
	if _, ok := o.(*Rules); !ok {
		t.Fatalf("expected *Rules, got %T", o)
	}
	o, err = New(KindRandom, domain.First, 3)
	if _, ok := o.(*Random); !ok || err != nil {
		t.Fatalf("expected *Random, got %T %v", o, err)
	}
	o, err = New(KindNone, domain.First, 0)
	if o != nil || err != nil {
		t.Fatalf("expected nil opponent for none, got %v %v", o, err)
	}
	if _, err := New("minimax", domain.First, 0); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if k, err := ParseKind(""); err != nil || k != KindRules {
		t.Fatalf("expected default rules kind, got %q %v", k, err)
	}
}
