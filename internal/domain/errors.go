package domain

import (
	"errors"
	"fmt"
)

// Errors returned by Board operations. ErrOutOfBounds, ErrOccupied and
// ErrNotYourTurn all match ErrIllegalMove under errors.Is.
var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game over")

	ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrIllegalMove)
	ErrOccupied    = fmt.Errorf("%w: square occupied", ErrIllegalMove)
	ErrNotYourTurn = fmt.Errorf("%w: not your turn", ErrIllegalMove)
)
