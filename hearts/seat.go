package hearts

import "fmt"

// Seat is one of the four fixed table positions. Turn order is
// N -> E -> S -> W -> N.
type Seat byte

const (
	SeatNorth Seat = iota
	SeatEast
	SeatSouth
	SeatWest
)

const NumSeats = 4

// Next returns the seat that plays after s.
func (s Seat) Next() Seat {
	return (s + 1) % NumSeats
}

// Letter returns the wire letter N, E, S or W.
func (s Seat) Letter() byte {
	switch s {
	case SeatNorth:
		return 'N'
	case SeatEast:
		return 'E'
	case SeatSouth:
		return 'S'
	case SeatWest:
		return 'W'
	}
	return '?'
}

func (s Seat) String() string {
	return string(s.Letter())
}

// ParseSeat converts a wire letter to a Seat.
func ParseSeat(b byte) (Seat, error) {
	switch b {
	case 'N':
		return SeatNorth, nil
	case 'E':
		return SeatEast, nil
	case 'S':
		return SeatSouth, nil
	case 'W':
		return SeatWest, nil
	default:
		return 0, fmt.Errorf("invalid seat letter %q", b)
	}
}

// AllSeats lists the seats in N, E, S, W order, the order every
// per-seat wire message uses.
func AllSeats() [NumSeats]Seat {
	return [NumSeats]Seat{SeatNorth, SeatEast, SeatSouth, SeatWest}
}
