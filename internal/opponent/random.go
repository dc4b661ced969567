package opponent

import (
	"math/rand"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

// Random picks uniformly among the free squares. It is not safe for
// concurrent use.
type Random struct {
	self domain.Player
	rng  *rand.Rand
}

// NewRandom returns a Random opponent seeded with seed.
func NewRandom(self domain.Player, seed int64) *Random {
	return &Random{self: self, rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Self() domain.Player { return r.self }

func (r *Random) ChooseMove(b Board) (domain.Square, error) {
	if err := ready(b, r.self); err != nil {
		return domain.NoSquare, err
	}
	free := b.Free()
	return free[r.rng.Intn(len(free))], nil
}
