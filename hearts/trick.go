package hearts

import (
	"hearts-lite/card"
)

const TricksPerRound = 13

// Trick is one round-robin of four plays. It is created and owned by
// the game loop for its duration; seat sessions hold a non-owning
// reference for play validation and never mutate it. Cards are appended
// strictly in seat turn order starting from the designated seat.
type Trick struct {
	number   int
	typ      RoundType
	starting Seat
	current  Seat

	plays   []card.Card
	lead    card.Suit
	hasLead bool

	taking card.Card
	taker  Seat
}

// NewTrick starts trick number (1..13) led by starting.
func NewTrick(starting Seat, number int, typ RoundType) *Trick {
	return &Trick{
		number:   number,
		typ:      typ,
		starting: starting,
		current:  starting,
		taker:    starting,
	}
}

func (t *Trick) Number() int     { return t.number }
func (t *Trick) Type() RoundType { return t.typ }
func (t *Trick) Starting() Seat  { return t.starting }

// Current returns the seat whose play the trick expects next.
func (t *Trick) Current() Seat { return t.current }

func (t *Trick) PlayCount() int { return len(t.plays) }
func (t *Trick) Complete() bool { return len(t.plays) == NumSeats }

// Cards returns the plays so far, in play order.
func (t *Trick) Cards() []card.Card {
	out := make([]card.Card, len(t.plays))
	copy(out, t.plays)
	return out
}

// LeadSuit returns the leading suit once the first card has been played.
func (t *Trick) LeadSuit() (card.Suit, bool) {
	return t.lead, t.hasLead
}

// TakingCard returns the currently winning card.
func (t *Trick) TakingCard() card.Card { return t.taking }

// Taker returns the seat currently winning the trick; after the fourth
// play this is the trick's final winner.
func (t *Trick) Taker() Seat { return t.taker }

// AddCard appends the current seat's play. The first card fixes the
// leading suit; a later card takes over only when it follows that suit
// and outranks the current taking card.
func (t *Trick) AddCard(c card.Card) error {
	if t.Complete() {
		return ErrTrickComplete
	}
	if !t.hasLead {
		t.lead = c.Suit()
		t.hasLead = true
		t.taking = c
		t.taker = t.current
	} else if c.Suit() == t.lead && c.Beats(t.taking) {
		t.taking = c
		t.taker = t.current
	}
	t.plays = append(t.plays, c)
	t.current = t.current.Next()
	return nil
}

// FollowsSuit reports whether playing c from hand h honors the
// suit-following rule: once a leading suit is fixed, a seat holding
// that suit must play it.
func (t *Trick) FollowsSuit(c card.Card, h card.Hand) bool {
	if !t.hasLead || c.Suit() == t.lead {
		return true
	}
	return !h.HasSuit(t.lead)
}

// Points scores the completed trick under its round type. Rules
// cascade: every type applies all lower-numbered rules as well, and
// type 7 applies all of 1..6.
func (t *Trick) Points() int {
	pts := 1
	if t.typ >= RoundHearts {
		for _, c := range t.plays {
			if c.Suit() == card.SuitHeart {
				pts++
			}
		}
	}
	if t.typ >= RoundQueens {
		for _, c := range t.plays {
			if c.Rank() == card.RankQ {
				pts += 5
				break
			}
		}
	}
	if t.typ >= RoundKingsJacks {
		for _, c := range t.plays {
			if c.Rank() == card.RankK || c.Rank() == card.RankJ {
				pts += 2
			}
		}
	}
	if t.typ >= RoundKingOfHearts {
		for _, c := range t.plays {
			if c.Rank() == card.RankK && c.Suit() == card.SuitHeart {
				pts += 18
				break
			}
		}
	}
	if t.typ >= RoundSeventhAndLast {
		if t.number == 7 || t.number == TricksPerRound {
			pts += 10
		}
	}
	return pts
}
