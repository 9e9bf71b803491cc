package card

import "fmt"

type Suit byte

const (
	SuitClub Suit = iota
	SuitDiamond
	SuitHeart
	SuitSpade
)

// Letter returns the wire letter C, D, H or S.
func (s Suit) Letter() byte {
	switch s {
	case SuitClub:
		return 'C'
	case SuitDiamond:
		return 'D'
	case SuitHeart:
		return 'H'
	case SuitSpade:
		return 'S'
	}
	return '?'
}

func (s Suit) String() string {
	return string(s.Letter())
}

// ParseSuit converts a wire letter to a Suit.
func ParseSuit(b byte) (Suit, error) {
	switch b {
	case 'C':
		return SuitClub, nil
	case 'D':
		return SuitDiamond, nil
	case 'H':
		return SuitHeart, nil
	case 'S':
		return SuitSpade, nil
	default:
		return 0, fmt.Errorf("invalid suit letter %q", b)
	}
}
