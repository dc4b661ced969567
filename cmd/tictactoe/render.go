package main

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

// renderBoard draws b as a 3x3 grid. Free squares show their id so the
// player knows what to type.
func renderBoard(out *termenv.Output, b *domain.Board) string {
	var sb strings.Builder
	cells := b.Cells()
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString("|")
			}
			sb.WriteString(" " + renderCell(out, cells[row*3+col]) + " ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderCell(out *termenv.Output, c domain.Cell) string {
	if c.Occupant == domain.None {
		return out.String(fmt.Sprint(int(c.ID))).Faint().String()
	}
	s := out.String(c.Occupant.String())
	switch c.Mark {
	case domain.Win:
		return s.Foreground(out.Color("2")).Bold().String()
	case domain.Lose:
		return s.Faint().String()
	}
	if c.Occupant == domain.First {
		return s.Foreground(out.Color("1")).String()
	}
	return s.Foreground(out.Color("4")).String()
}

// result describes how b ended.
func result(b *domain.Board) string {
	switch {
	case !b.IsOver():
		return "unfinished"
	case b.IsDraw():
		return "draw"
	default:
		return b.Winner().String() + " wins"
	}
}
