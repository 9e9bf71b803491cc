package hearts

import (
	"fmt"
	"sync"

	"hearts-lite/card"
)

// RoundType selects the scoring rule set for one round. Higher types
// re-apply every lower rule; RoundEverything applies all of them.
type RoundType int

const (
	RoundTricks         RoundType = 1 // 1 point per trick taken
	RoundHearts         RoundType = 2 // + 1 per heart
	RoundQueens         RoundType = 3 // + 5 when a queen was played
	RoundKingsJacks     RoundType = 4 // + 2 per king or jack
	RoundKingOfHearts   RoundType = 5 // + 18 for the king of hearts
	RoundSeventhAndLast RoundType = 6 // + 10 on tricks 7 and 13
	RoundEverything     RoundType = 7 // rules 1..6 combined
)

func (t RoundType) Valid() bool {
	return t >= RoundTricks && t <= RoundEverything
}

// MaxPoints is the round's point ceiling. Once the dealt total reaches
// it the round ends, even before all 13 tricks are played.
func (t RoundType) MaxPoints() int {
	switch t {
	case RoundTricks, RoundHearts:
		return 13
	case RoundQueens, RoundSeventhAndLast:
		return 20
	case RoundKingsJacks:
		return 16
	case RoundKingOfHearts:
		return 18
	case RoundEverything:
		return 100
	}
	return 0
}

// Deal describes one round as the deal source provides it: a round
// type, the seat leading trick 1, and the four dealt hands as text in
// N, E, S, W order.
type Deal struct {
	Type     RoundType
	Starting Seat
	Hands    [NumSeats]string
}

// Validate checks that the deal covers the full 52-card deck, 13 to a
// hand, no card twice.
func (d Deal) Validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("invalid round type %d", d.Type)
	}
	seen := make(map[card.Card]Seat, 52)
	for _, s := range AllSeats() {
		h, err := card.ParseHand(d.Hands[s])
		if err != nil {
			return fmt.Errorf("hand %s: %w", s, err)
		}
		for _, c := range h.Cards() {
			if other, dup := seen[c]; dup {
				return fmt.Errorf("card %s dealt to both %s and %s", c, other, s)
			}
			seen[c] = s
		}
	}
	return nil
}

// Round is one deal played out over up to 13 tricks. The game loop owns
// it; seat sessions hold a non-owning reference and read the dealt-hand
// text and the completed-trick log when replaying state to a
// reconnecting peer, so those fields are guarded here.
type Round struct {
	typ      RoundType
	starting Seat
	hands    [NumSeats]string

	mu     sync.RWMutex
	points [NumSeats]int
	dealt  int
	tricks []*Trick
}

func NewRound(d Deal) *Round {
	return &Round{
		typ:      d.Type,
		starting: d.Starting,
		hands:    d.Hands,
	}
}

func (r *Round) Type() RoundType { return r.typ }
func (r *Round) Starting() Seat  { return r.starting }

// StartingHand returns the dealt hand text for a seat, as sent in DEAL.
func (r *Round) StartingHand(s Seat) string {
	return r.hands[s]
}

// AddPoints credits p points to a seat, clamped so the round total
// never passes the ceiling. It returns the points actually credited.
func (r *Round) AddPoints(s Seat, p int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room := r.typ.MaxPoints() - r.dealt; p > room {
		p = room
	}
	r.points[s] += p
	r.dealt += p
	return p
}

// Points returns the seat's accumulated points this round.
func (r *Round) Points(s Seat) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.points[s]
}

// DealtPoints returns the round total dealt so far.
func (r *Round) DealtPoints() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dealt
}

// CeilingReached reports whether the round's point ceiling is met.
func (r *Round) CeilingReached() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dealt >= r.typ.MaxPoints()
}

// LogTrick appends a completed trick to the resync log.
func (r *Round) LogTrick(t *Trick) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tricks = append(r.tricks, t)
}

// CompletedTricks returns the resync log in trick-number order.
func (r *Round) CompletedTricks() []*Trick {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Trick, len(r.tricks))
	copy(out, r.tricks)
	return out
}

// Finished reports whether the round is over: 13 tricks done or the
// ceiling reached.
func (r *Round) Finished() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tricks) == TricksPerRound || r.dealt >= r.typ.MaxPoints()
}
