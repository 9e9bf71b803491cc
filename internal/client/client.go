// Package client implements the reference player. It claims a seat and
// then follows the table: automatic mode picks its own cards, trying to
// duck under the current winner; interactive mode prompts for a card
// token on every turn.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/charmbracelet/log"

	"hearts-lite/card"
	"hearts-lite/hearts"
	"hearts-lite/internal/protocol"
)

// ErrSeatBusy reports a claim rejected because the seat is taken.
var ErrSeatBusy = errors.New("seat is busy")

type Config struct {
	Host string
	Port int
	Seat hearts.Seat
	Auto bool

	// In supplies card tokens in interactive mode; Out receives the
	// human-readable table report.
	In  io.Reader
	Out io.Writer
}

type Session struct {
	cfg    Config
	conn   net.Conn
	r      *bufio.Reader
	prompt *bufio.Scanner
	logger *log.Logger

	hand card.Hand
	// pending orders the remaining proposals for the open turn; WRONG
	// advances to the next one.
	pending []card.Card
}

// Dial connects to the server and prepares a session.
func Dial(cfg Config) (*Session, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		return nil, err
	}
	return NewSession(cfg, conn), nil
}

// NewSession wraps an established connection; tests drive it over a
// pipe.
func NewSession(cfg Config, conn net.Conn) *Session {
	s := &Session{
		cfg:    cfg,
		conn:   conn,
		r:      bufio.NewReaderSize(conn, protocol.MaxLineBytes),
		logger: log.WithPrefix("client/" + cfg.Seat.String()),
	}
	if cfg.In != nil {
		s.prompt = bufio.NewScanner(cfg.In)
	}
	return s
}

// Run claims the seat and plays until the server closes the connection,
// which is the normal end of a match.
func (s *Session) Run() error {
	defer s.conn.Close()
	if err := s.send(protocol.FormatIam(s.cfg.Seat)); err != nil {
		return err
	}

	for {
		line, err := s.readLine()
		if err == io.EOF {
			s.report("table closed, goodbye")
			return nil
		}
		if err != nil {
			return err
		}
		msg, err := protocol.ParseServerLine(line)
		if err != nil {
			s.logger.Error("unparseable server line", "line", line)
			return fmt.Errorf("server sent %q: %w", line, err)
		}
		if err := s.handle(msg); err != nil {
			return err
		}
	}
}

func (s *Session) handle(msg protocol.ServerMessage) error {
	switch m := msg.(type) {
	case protocol.Busy:
		s.report("seat taken, occupied: %s", seatList(m.Seats))
		return ErrSeatBusy

	case protocol.Deal:
		hand, err := card.ParseHand(m.Hand)
		if err != nil {
			return err
		}
		s.hand = hand
		s.pending = nil
		s.report("round type %d, %s starts, your hand: %s", m.Type, m.Starting, s.hand)
		return nil

	case protocol.TrickState:
		return s.play(m)

	case protocol.Wrong:
		s.report("play rejected for trick %d", m.Number)
		return s.retry(m.Number)

	case protocol.Taken:
		// The server confirmed the trick; whichever of its cards we
		// held was our accepted play.
		for _, c := range m.Cards {
			s.hand.Remove(c)
		}
		s.pending = nil
		s.report("trick %d taken by %s: %s", m.Number, m.Winner, cardList(m.Cards))
		return nil

	case protocol.Score:
		s.report("round score: %s", pointList(m.Points))
		return nil

	case protocol.Total:
		s.report("match total: %s", pointList(m.Points))
		return nil
	}
	return nil
}

// play answers a your-turn push.
func (s *Session) play(m protocol.TrickState) error {
	s.report("trick %d, on the table: %s", m.Number, cardList(m.Played))
	if !s.cfg.Auto {
		return s.promptPlay(m.Number)
	}
	s.pending = s.candidates(m.Played)
	return s.retry(m.Number)
}

// retry sends the next queued proposal, or prompts again in
// interactive mode.
func (s *Session) retry(number int) error {
	if !s.cfg.Auto {
		return s.promptPlay(number)
	}
	if len(s.pending) == 0 {
		return fmt.Errorf("no playable card left for trick %d", number)
	}
	c := s.pending[0]
	s.pending = s.pending[1:]
	s.report("playing %s", c)
	return s.send(protocol.FormatPlay(number, c))
}

func (s *Session) promptPlay(number int) error {
	for {
		s.report("your hand: %s", s.hand)
		fmt.Fprintf(s.cfg.Out, "card> ")
		if !s.prompt.Scan() {
			return io.EOF
		}
		c, err := card.Parse(strings.TrimSpace(s.prompt.Text()))
		if err != nil {
			s.report("unrecognized card token")
			continue
		}
		return s.send(protocol.FormatPlay(number, c))
	}
}

// candidates orders the hand for one turn: first the highest card that
// still ducks under the current winner, then the rest of the lead suit
// from the bottom, then everything else from the bottom. Off-suit
// entries only matter when the hand is void in the lead.
func (s *Session) candidates(played []card.Card) []card.Card {
	all := s.hand.Cards()
	if len(played) == 0 {
		return all
	}
	lead := played[0].Suit()
	winning := played[0]
	for _, c := range played[1:] {
		if c.Beats(winning) {
			winning = c
		}
	}

	var follow, offsuit []card.Card
	for _, c := range all {
		if c.Suit() == lead {
			follow = append(follow, c)
		} else {
			offsuit = append(offsuit, c)
		}
	}
	if len(follow) == 0 {
		return offsuit
	}

	var ordered []card.Card
	if duck, ok := s.hand.HighestBelow(winning); ok {
		ordered = append(ordered, duck)
		for _, c := range follow {
			if c != duck {
				ordered = append(ordered, c)
			}
		}
	} else {
		ordered = follow
	}
	return append(ordered, offsuit...)
}

func (s *Session) send(line string) error {
	_, err := io.WriteString(s.conn, line+protocol.Terminator)
	return err
}

func (s *Session) readLine() (string, error) {
	var buf []byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if len(buf) == 0 && err == io.EOF {
				return "", io.EOF
			}
			return "", err
		}
		buf = append(buf, b)
		if b == '\n' {
			break
		}
		if len(buf) >= protocol.MaxLineBytes {
			return "", fmt.Errorf("server line too long")
		}
	}
	line := string(buf)
	if !strings.HasSuffix(line, protocol.Terminator) {
		return "", fmt.Errorf("unterminated server line %q", line)
	}
	return strings.TrimSuffix(line, protocol.Terminator), nil
}

func (s *Session) report(format string, args ...any) {
	if s.cfg.Out != nil {
		fmt.Fprintf(s.cfg.Out, format+"\n", args...)
	}
}

func seatList(seats []hearts.Seat) string {
	tokens := make([]string, len(seats))
	for i, s := range seats {
		tokens[i] = s.String()
	}
	return strings.Join(tokens, ", ")
}

func cardList(cards []card.Card) string {
	if len(cards) == 0 {
		return "nothing"
	}
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = c.String()
	}
	return strings.Join(tokens, ", ")
}

func pointList(points [hearts.NumSeats]int) string {
	tokens := make([]string, 0, hearts.NumSeats)
	for _, s := range hearts.AllSeats() {
		tokens = append(tokens, fmt.Sprintf("%s=%d", s, points[s]))
	}
	return strings.Join(tokens, " ")
}
