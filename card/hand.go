package card

import (
	"fmt"
	"sort"
	"strings"
)

// Hand is the set of cards one seat currently holds. Elements are
// unique; the owning seat is the only mutator.
type Hand map[Card]struct{}

// NewHand builds a hand from distinct cards.
func NewHand(cards ...Card) (Hand, error) {
	h := make(Hand, len(cards))
	for _, c := range cards {
		if err := h.Add(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// ParseHand parses a dealt-hand string of exactly 13 concatenated card
// tokens, the format the deal file and the DEAL message carry.
func ParseHand(s string) (Hand, error) {
	cards, err := ParseMany(s)
	if err != nil {
		return nil, err
	}
	if len(cards) != 13 {
		return nil, fmt.Errorf("dealt hand has %d cards, want 13", len(cards))
	}
	return NewHand(cards...)
}

func (h Hand) Add(c Card) error {
	if !c.Valid() {
		return fmt.Errorf("invalid card")
	}
	if _, ok := h[c]; ok {
		return fmt.Errorf("duplicate card %s", c)
	}
	h[c] = struct{}{}
	return nil
}

// Remove deletes c from the hand, reporting whether it was held.
func (h Hand) Remove(c Card) bool {
	if _, ok := h[c]; !ok {
		return false
	}
	delete(h, c)
	return true
}

func (h Hand) Has(c Card) bool {
	_, ok := h[c]
	return ok
}

// HasSuit reports whether any held card is of suit s.
func (h Hand) HasSuit(s Suit) bool {
	for c := range h {
		if c.Suit() == s {
			return true
		}
	}
	return false
}

func (h Hand) Count() int {
	return len(h)
}

// Cards returns the hand ordered by suit, then ascending rank.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, len(h))
	for c := range h {
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i] < cards[j] })
	return cards
}

// HighestOfSuit returns the highest held card of suit s, if any.
func (h Hand) HighestOfSuit(s Suit) (Card, bool) {
	var best Card
	for c := range h {
		if c.Suit() != s {
			continue
		}
		if best == CardInvalid || c.Beats(best) {
			best = c
		}
	}
	return best, best != CardInvalid
}

// HighestBelow returns the highest held card of limit's suit that still
// ranks below limit, if any.
func (h Hand) HighestBelow(limit Card) (Card, bool) {
	var best Card
	for c := range h {
		if c.Suit() != limit.Suit() || !limit.Beats(c) {
			continue
		}
		if best == CardInvalid || c.Beats(best) {
			best = c
		}
	}
	return best, best != CardInvalid
}

// Lowest returns the lowest-ranked held card, ignoring suit.
func (h Hand) Lowest() (Card, bool) {
	var pick Card
	for c := range h {
		if pick == CardInvalid || c.Rank() < pick.Rank() {
			pick = c
		}
	}
	return pick, pick != CardInvalid
}

// String renders the hand as comma-separated tokens, for logs and the
// client display.
func (h Hand) String() string {
	cards := h.Cards()
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = c.String()
	}
	return strings.Join(tokens, ", ")
}
