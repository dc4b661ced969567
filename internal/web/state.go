package web

import (
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

type cellView struct {
	Square   int    `json:"square"`
	Occupant string `json:"occupant"`
	Mark     string `json:"mark,omitempty"`
	Active   bool   `json:"active"`
}

// stateView is the JSON form of a game, served by /state and the websocket.
type stateView struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Turn        int        `json:"turn"`
	Next        string     `json:"next,omitempty"`
	Winner      string     `json:"winner,omitempty"`
	WinPattern  [][]int    `json:"win_pattern,omitempty"`
	Free        []int      `json:"free"`
	Cells       []cellView `json:"cells"`
	Opponent    string     `json:"opponent"`
	HumanSide   string     `json:"human_side"`
	HumanToMove bool       `json:"human_to_move"`
	LastRule    string     `json:"last_rule,omitempty"`
	Aborted     bool       `json:"aborted,omitempty"`
}

func newStateView(gs app.GameState) stateView {
	b := gs.Board
	v := stateView{
		ID:          gs.ID,
		Status:      b.Status().String(),
		Turn:        b.TurnNumber(),
		Winner:      b.Winner().String(),
		Free:        squares(b.Free()),
		Opponent:    string(gs.Settings.Opponent),
		HumanSide:   gs.Settings.HumanSide.String(),
		HumanToMove: gs.HumanToMove(),
		LastRule:    gs.LastRule,
		Aborted:     gs.Aborted,
	}
	if !b.IsOver() {
		v.Next = b.CurrentTurn().String()
	}
	for _, l := range b.WinPattern() {
		v.WinPattern = append(v.WinPattern, squares(l[:]))
	}
	for _, c := range b.Cells() {
		v.Cells = append(v.Cells, cellView{
			Square:   int(c.ID),
			Occupant: c.Occupant.String(),
			Mark:     c.Mark.String(),
			Active:   c.Active && v.HumanToMove,
		})
	}
	return v
}

func squares(in []domain.Square) []int {
	out := make([]int, len(in))
	for i, s := range in {
		out[i] = int(s)
	}
	return out
}
