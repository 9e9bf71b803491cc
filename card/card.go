package card

import "fmt"

// Card packs one playing card into a byte.
//
// Encoding:
// - high 4 bits: suit (0:Club, 1:Diamond, 2:Heart, 3:Spade)
// - low 4 bits: rank (2..10, 11:J, 12:Q, 13:K, 14:A)
type Card byte

const CardInvalid Card = 0

const (
	Rank2  byte = 2
	Rank10 byte = 10
	RankJ  byte = 11
	RankQ  byte = 12
	RankK  byte = 13
	RankA  byte = 14
)

// Make builds a Card from a suit and a rank in [2,14].
func Make(s Suit, rank byte) Card {
	return Card(byte(s)<<4 | rank&0x0F)
}

// Suit returns the card's suit.
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

// Rank returns the rank value 2..14 (J=11, Q=12, K=13, A=14).
func (c Card) Rank() byte {
	return byte(c & 0x0F)
}

// Valid reports whether the card carries a playable suit and rank.
func (c Card) Valid() bool {
	return c.Suit() <= SuitSpade && c.Rank() >= Rank2 && c.Rank() <= RankA
}

// Beats reports whether c outranks other inside one suit. Cards of
// different suits never beat each other.
func (c Card) Beats(other Card) bool {
	return c.Suit() == other.Suit() && c.Rank() > other.Rank()
}

// String renders the wire token: rank text followed by the suit letter,
// e.g. "10H", "QS", "2C".
func (c Card) String() string {
	if !c.Valid() {
		return "Invalid"
	}
	return rankText(c.Rank()) + string(c.Suit().Letter())
}

func rankText(r byte) string {
	switch r {
	case RankJ:
		return "J"
	case RankQ:
		return "Q"
	case RankK:
		return "K"
	case RankA:
		return "A"
	default:
		return fmt.Sprintf("%d", r)
	}
}

// Parse converts a single wire token ("2C".."10S", "JH", "AD") to a Card.
func Parse(token string) (Card, error) {
	cards, err := ParseMany(token)
	if err != nil {
		return CardInvalid, err
	}
	if len(cards) != 1 {
		return CardInvalid, fmt.Errorf("expected one card token, got %q", token)
	}
	return cards[0], nil
}

// ParseMany tokenizes a string of concatenated card tokens. The same
// tokenizer serves dealt-hand strings and the card lists inside TRICK
// and TAKEN lines; token boundaries follow from the grammar, not from
// byte offsets.
func ParseMany(s string) ([]Card, error) {
	var cards []Card
	i := 0
	for i < len(s) {
		rank, n, err := scanRank(s[i:])
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", len(cards)+1, err)
		}
		i += n
		if i >= len(s) {
			return nil, fmt.Errorf("card %d: missing suit letter", len(cards)+1)
		}
		suit, err := ParseSuit(s[i])
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", len(cards)+1, err)
		}
		i++
		cards = append(cards, Make(suit, rank))
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("empty card string")
	}
	return cards, nil
}

func scanRank(s string) (byte, int, error) {
	switch s[0] {
	case '1':
		if len(s) < 2 || s[1] != '0' {
			return 0, 0, fmt.Errorf("invalid rank starting with %q", s[0])
		}
		return Rank10, 2, nil
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return s[0] - '0', 1, nil
	case 'J':
		return RankJ, 1, nil
	case 'Q':
		return RankQ, 1, nil
	case 'K':
		return RankK, 1, nil
	case 'A':
		return RankA, 1, nil
	default:
		return 0, 0, fmt.Errorf("invalid rank character %q", s[0])
	}
}
