package session

import (
	"errors"
	"fmt"
)

var ErrUnknownSide = errors.New("unknown side")

// Side selects one of the two documents being compared.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

func (s Side) valid() bool {
	return s == Left || s == Right
}

// Other returns the opposite side.
func (s Side) Other() Side {
	return 1 - s
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownSide)
	}
}
