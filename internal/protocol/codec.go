// Package protocol renders game events as wire lines and parses inbound
// lines into typed messages. Lines are ASCII, terminated by "\r\n"; card
// tokens are rank text followed by a suit letter, seats are single
// letters N, E, S, W.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hearts-lite/card"
	"hearts-lite/hearts"
)

const (
	// Terminator ends every wire line in both directions.
	Terminator = "\r\n"

	// MaxLineBytes bounds an inbound line including its terminator. A
	// peer that keeps sending without terminating is protocol-broken
	// and gets disconnected.
	MaxLineBytes = 128
)

// ErrMalformed marks an inbound line that does not parse as any known
// message. The connection that sent it is torn down.
var ErrMalformed = errors.New("malformed protocol line")

// ClientMessage is a parsed client-to-server line.
type ClientMessage interface{ clientMessage() }

// Iam is a seat claim.
type Iam struct {
	Seat hearts.Seat
}

// Play proposes one card for the given trick.
type Play struct {
	Trick int
	Card  card.Card
}

func (Iam) clientMessage()  {}
func (Play) clientMessage() {}

// ServerMessage is a parsed server-to-client line.
type ServerMessage interface{ serverMessage() }

// Busy rejects a seat claim, listing every currently taken seat.
type Busy struct {
	Seats []hearts.Seat
}

// Deal announces a new round: its type, the seat leading trick 1, and
// the receiver's 13 dealt cards as one concatenated token run.
type Deal struct {
	Type     hearts.RoundType
	Starting hearts.Seat
	Hand     string
}

// TrickState asks the receiver to play, showing the cards already on
// the table in play order.
type TrickState struct {
	Number int
	Played []card.Card
}

// Wrong rejects an illegal play proposal; the turn stays open.
type Wrong struct {
	Number int
}

// Taken announces a resolved trick: the four plays in order and the
// seat that takes them.
type Taken struct {
	Number int
	Cards  []card.Card
	Winner hearts.Seat
}

// Score carries the per-seat points of the round that just ended.
type Score struct {
	Points [hearts.NumSeats]int
}

// Total carries the per-seat running match totals.
type Total struct {
	Points [hearts.NumSeats]int
}

func (Busy) serverMessage()       {}
func (Deal) serverMessage()       {}
func (TrickState) serverMessage() {}
func (Wrong) serverMessage()      {}
func (Taken) serverMessage()      {}
func (Score) serverMessage()      {}
func (Total) serverMessage()      {}

// FormatIam renders the seat claim a client opens with.
func FormatIam(s hearts.Seat) string {
	return "IAM" + s.String()
}

// FormatPlay renders a client's play proposal.
func FormatPlay(number int, c card.Card) string {
	return fmt.Sprintf("TRICK%d%s", number, c)
}

// FormatBusy renders the claim rejection. Seats appear in the order
// given; the server lists them N, E, S, W.
func FormatBusy(seats []hearts.Seat) string {
	var sb strings.Builder
	sb.WriteString("BUSY")
	for _, s := range seats {
		sb.WriteByte(s.Letter())
	}
	return sb.String()
}

// FormatDeal renders the round announcement for one seat. hand is the
// seat's dealt 13-card token run exactly as the deal source recorded it.
func FormatDeal(typ hearts.RoundType, starting hearts.Seat, hand string) string {
	return fmt.Sprintf("DEAL%d%c%s", typ, starting.Letter(), hand)
}

// FormatTrickState renders the your-turn push: trick number plus the
// 0..3 cards already played.
func FormatTrickState(number int, played []card.Card) string {
	var sb strings.Builder
	sb.WriteString("TRICK")
	sb.WriteString(strconv.Itoa(number))
	for _, c := range played {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// FormatWrong renders the rejection of an illegal proposal.
func FormatWrong(number int) string {
	return "WRONG" + strconv.Itoa(number)
}

// FormatTaken renders a resolved trick.
func FormatTaken(number int, cards []card.Card, winner hearts.Seat) string {
	var sb strings.Builder
	sb.WriteString("TAKEN")
	sb.WriteString(strconv.Itoa(number))
	for _, c := range cards {
		sb.WriteString(c.String())
	}
	sb.WriteByte(winner.Letter())
	return sb.String()
}

// FormatScore renders the round-score report, seats in N, E, S, W order.
func FormatScore(points [hearts.NumSeats]int) string {
	return formatPoints("SCORE", points)
}

// FormatTotal renders the match-total report, seats in N, E, S, W order.
func FormatTotal(points [hearts.NumSeats]int) string {
	return formatPoints("TOTAL", points)
}

func formatPoints(verb string, points [hearts.NumSeats]int) string {
	var sb strings.Builder
	sb.WriteString(verb)
	for _, s := range hearts.AllSeats() {
		sb.WriteByte(s.Letter())
		sb.WriteString(strconv.Itoa(points[s]))
	}
	return sb.String()
}

// ParseClientLine parses one terminator-stripped client line into a
// typed message, or ErrMalformed.
func ParseClientLine(line string) (ClientMessage, error) {
	switch {
	case strings.HasPrefix(line, "IAM"):
		rest := line[len("IAM"):]
		if len(rest) != 1 {
			return nil, ErrMalformed
		}
		seat, err := hearts.ParseSeat(rest[0])
		if err != nil {
			return nil, ErrMalformed
		}
		return Iam{Seat: seat}, nil

	case strings.HasPrefix(line, "TRICK"):
		n, cards, err := parseTrickBody(line[len("TRICK"):], 1, 1)
		if err != nil {
			return nil, err
		}
		return Play{Trick: n, Card: cards[0]}, nil
	}
	return nil, ErrMalformed
}

// ParseServerLine parses one terminator-stripped server line into a
// typed message, or ErrMalformed. The reference client uses it.
func ParseServerLine(line string) (ServerMessage, error) {
	switch {
	case strings.HasPrefix(line, "BUSY"):
		body := line[len("BUSY"):]
		if body == "" {
			return nil, ErrMalformed
		}
		seats := make([]hearts.Seat, 0, len(body))
		for i := 0; i < len(body); i++ {
			s, err := hearts.ParseSeat(body[i])
			if err != nil {
				return nil, ErrMalformed
			}
			seats = append(seats, s)
		}
		return Busy{Seats: seats}, nil

	case strings.HasPrefix(line, "DEAL"):
		body := line[len("DEAL"):]
		if len(body) < 2 {
			return nil, ErrMalformed
		}
		typ := hearts.RoundType(body[0] - '0')
		if !typ.Valid() {
			return nil, ErrMalformed
		}
		starting, err := hearts.ParseSeat(body[1])
		if err != nil {
			return nil, ErrMalformed
		}
		hand := body[2:]
		if _, err := card.ParseHand(hand); err != nil {
			return nil, ErrMalformed
		}
		return Deal{Type: typ, Starting: starting, Hand: hand}, nil

	case strings.HasPrefix(line, "TRICK"):
		n, cards, err := parseTrickBody(line[len("TRICK"):], 0, hearts.NumSeats-1)
		if err != nil {
			return nil, err
		}
		return TrickState{Number: n, Played: cards}, nil

	case strings.HasPrefix(line, "WRONG"):
		n, cards, err := parseTrickBody(line[len("WRONG"):], 0, 0)
		if err != nil || len(cards) != 0 {
			return nil, ErrMalformed
		}
		return Wrong{Number: n}, nil

	case strings.HasPrefix(line, "TAKEN"):
		body := line[len("TAKEN"):]
		if len(body) < 2 {
			return nil, ErrMalformed
		}
		winner, err := hearts.ParseSeat(body[len(body)-1])
		if err != nil {
			return nil, ErrMalformed
		}
		n, cards, err := parseTrickBody(body[:len(body)-1], hearts.NumSeats, hearts.NumSeats)
		if err != nil {
			return nil, err
		}
		return Taken{Number: n, Cards: cards, Winner: winner}, nil

	case strings.HasPrefix(line, "SCORE"):
		points, err := parsePoints(line[len("SCORE"):])
		if err != nil {
			return nil, err
		}
		return Score{Points: points}, nil

	case strings.HasPrefix(line, "TOTAL"):
		points, err := parsePoints(line[len("TOTAL"):])
		if err != nil {
			return nil, err
		}
		return Total{Points: points}, nil
	}
	return nil, ErrMalformed
}

// parseTrickBody splits a TRICK/TAKEN body into trick number and card
// tokens, accepting min..max cards. The number length is ambiguous when
// the first token is a 10 ("110H" is trick 1 + 10H, not trick 11 +
// garbage), so the two-digit reading is tried first and the one-digit
// reading is the fallback.
func parseTrickBody(body string, min, max int) (int, []card.Card, error) {
	lens := []int{1}
	if len(body) >= 2 && body[0] == '1' && body[1] >= '0' && body[1] <= '3' {
		lens = []int{2, 1}
	}
	for _, l := range lens {
		if len(body) < l {
			continue
		}
		n, err := strconv.Atoi(body[:l])
		if err != nil || n < 1 || n > hearts.TricksPerRound {
			continue
		}
		var cards []card.Card
		if rest := body[l:]; rest != "" {
			if cards, err = card.ParseMany(rest); err != nil {
				continue
			}
		}
		if len(cards) < min || len(cards) > max {
			continue
		}
		return n, cards, nil
	}
	return 0, nil, ErrMalformed
}

// parsePoints reads exactly four seat-letter + decimal pairs covering
// all four seats.
func parsePoints(body string) ([hearts.NumSeats]int, error) {
	var points [hearts.NumSeats]int
	var seen [hearts.NumSeats]bool
	i := 0
	for k := 0; k < hearts.NumSeats; k++ {
		if i >= len(body) {
			return points, ErrMalformed
		}
		seat, err := hearts.ParseSeat(body[i])
		if err != nil || seen[seat] {
			return points, ErrMalformed
		}
		i++
		j := i
		for j < len(body) && body[j] >= '0' && body[j] <= '9' {
			j++
		}
		if j == i {
			return points, ErrMalformed
		}
		n, err := strconv.Atoi(body[i:j])
		if err != nil {
			return points, ErrMalformed
		}
		points[seat] = n
		seen[seat] = true
		i = j
	}
	if i != len(body) {
		return points, ErrMalformed
	}
	return points, nil
}
