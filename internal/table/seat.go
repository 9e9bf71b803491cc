package table

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"hearts-lite/card"
	"hearts-lite/hearts"
	"hearts-lite/internal/protocol"
)

// DefaultTurnTimeout bounds how long RequestPlay waits for a legal play
// before declaring the seat lost.
const DefaultTurnTimeout = 5 * time.Second

// Seat is one table position's session: the live connection, the held
// hand, the running match total, and the turn handshake between the
// game loop and the connection's reader goroutine. It is built once at
// server start and lives for the process; only the connection handle
// changes across reconnects.
//
// Locking: one mutex per seat, never a table-wide one. The loop and the
// reader both take it briefly; neither holds it while blocked on the
// network, except Claim, which deliberately keeps the seat unusable
// until its resync replay finishes or fails.
type Seat struct {
	id      hearts.Seat
	timeout time.Duration
	logger  *log.Logger

	mu       sync.Mutex
	conn     *Conn
	connWait chan struct{} // closed while a connection is live
	hand     card.Hand
	total    int
	round    *hearts.Round
	trick    *hearts.Trick
	myTurn   bool
	accepted card.Card
	hasPlay  bool
	wake     chan struct{} // capacity 1: play accepted or connection lost
}

func NewSeat(id hearts.Seat, timeout time.Duration) *Seat {
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}
	return &Seat{
		id:       id,
		timeout:  timeout,
		logger:   log.WithPrefix("seat/" + id.String()),
		connWait: make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
}

func (s *Seat) ID() hearts.Seat { return s.id }

// Connected reports whether a claimed connection is live right now.
func (s *Seat) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Total returns the running match total.
func (s *Seat) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// AddTotal credits round points to the match total.
func (s *Seat) AddTotal(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total += p
}

// Claim attaches a connection to the seat. It fails with
// ErrSeatOccupied when a live connection already holds it. When a round
// is in progress the missed state (DEAL plus every completed TAKEN, in
// trick order) is replayed to the new connection first; the seat only
// becomes connected once the whole replay lands, so a replay failure
// leaves it disconnected as if the claim never happened. A finished
// round is not replayed; the next DEAL covers a seat reconnecting
// between rounds.
func (s *Seat) Claim(c *Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return ErrSeatOccupied
	}
	if s.round != nil && !s.round.Finished() {
		if err := s.replayLocked(c); err != nil {
			s.logger.Warn("resync replay failed", "conn", c.ID(), "err", err)
			return err
		}
	}
	s.conn = c
	close(s.connWait)
	s.logger.Info("claimed", "conn", c.ID(), "remote", c.RemoteAddr())
	return nil
}

func (s *Seat) replayLocked(c *Conn) error {
	deal := protocol.FormatDeal(s.round.Type(), s.round.Starting(), s.round.StartingHand(s.id))
	if err := c.WriteLine(deal); err != nil {
		return err
	}
	for _, t := range s.round.CompletedTricks() {
		if err := c.WriteLine(protocol.FormatTaken(t.Number(), t.Cards(), t.Taker())); err != nil {
			return err
		}
	}
	return nil
}

// Drop detaches a connection and closes it. Stale handles (a reader
// whose connection was already replaced) only close themselves and
// leave the seat alone.
func (s *Seat) Drop(c *Conn) {
	s.mu.Lock()
	if s.conn != c {
		s.mu.Unlock()
		_ = c.Close()
		return
	}
	s.dropLocked()
	s.mu.Unlock()
	_ = c.Close()
	s.logger.Info("disconnected", "conn", c.ID())
}

// dropLocked clears the live connection, re-arms the connect barrier
// and wakes any blocked RequestPlay so it can observe the loss.
func (s *Seat) dropLocked() {
	s.conn = nil
	s.connWait = make(chan struct{})
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// WaitConnected blocks until the seat holds a live connection or the
// context ends.
func (s *Seat) WaitConnected(ctx context.Context) error {
	s.mu.Lock()
	ch := s.connWait
	connected := s.conn != nil
	s.mu.Unlock()
	if connected {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartRound resets the seat for a new deal and sends the DEAL line.
// A send failure drops the connection and returns ErrSeatLost; the loop
// waits for a reconnect and calls again (the resulting duplicate DEAL
// is harmless, clients treat it as a hand reset).
func (s *Seat) StartRound(r *hearts.Round) error {
	hand, err := card.ParseHand(r.StartingHand(s.id))
	if err != nil {
		return err
	}
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return ErrSeatLost
	}
	s.round = r
	s.hand = hand
	s.mu.Unlock()

	line := protocol.FormatDeal(r.Type(), r.Starting(), r.StartingHand(s.id))
	if err := conn.WriteLine(line); err != nil {
		s.Drop(conn)
		return ErrSeatLost
	}
	return nil
}

// SendLine pushes one already-formatted line to the live connection. A
// write failure drops the connection and reports ErrSeatLost.
func (s *Seat) SendLine(line string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrSeatLost
	}
	if err := conn.WriteLine(line); err != nil {
		s.Drop(conn)
		return ErrSeatLost
	}
	return nil
}

// RequestPlay runs one turn: it marks the seat's turn, pushes the trick
// state, then blocks until the reader accepts a legal play, the turn
// timeout fires, or the connection drops. On success the accepted card
// is appended to the trick, removed from the hand, and returned. On
// timeout or drop the seat transitions to disconnected and ErrSeatLost
// comes back; the caller retries after the seat reconnects, so a lost
// seat stalls the trick rather than skipping the turn.
//
// Called only by the game loop, one seat at a time.
func (s *Seat) RequestPlay(t *hearts.Trick) (card.Card, error) {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return card.CardInvalid, ErrSeatLost
	}
	s.trick = t
	s.myTurn = true
	s.hasPlay = false
	select {
	case <-s.wake: // discard a stale signal from a previous turn
	default:
	}
	s.mu.Unlock()

	if err := conn.WriteLine(protocol.FormatTrickState(t.Number(), t.Cards())); err != nil {
		s.Drop(conn)
		s.clearTurn()
		return card.CardInvalid, ErrSeatLost
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	for {
		select {
		case <-s.wake:
			if c, ok := s.finishTurn(conn); ok {
				if err := t.AddCard(c); err != nil {
					return card.CardInvalid, err
				}
				return c, nil
			}
			s.mu.Lock()
			lost := s.conn != conn
			s.mu.Unlock()
			if lost {
				s.clearTurn()
				return card.CardInvalid, ErrSeatLost
			}
			// Spurious wakeup; keep waiting out the timer.

		case <-timer.C:
			if c, ok := s.finishTurn(conn); ok {
				if err := t.AddCard(c); err != nil {
					return card.CardInvalid, err
				}
				return c, nil
			}
			s.mu.Lock()
			cur := s.conn
			s.myTurn = false
			s.trick = nil
			if cur == conn && cur != nil {
				s.dropLocked()
			}
			s.mu.Unlock()
			if cur == conn && cur != nil {
				_ = cur.Close()
				s.logger.Warn("turn timed out", "conn", conn.ID(), "trick", t.Number())
			}
			return card.CardInvalid, ErrSeatLost
		}
	}
}

// finishTurn consumes an accepted play, if one landed on the same
// connection the turn was issued to.
func (s *Seat) finishTurn(conn *Conn) (card.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPlay || s.conn != conn {
		return card.CardInvalid, false
	}
	c := s.accepted
	s.hand.Remove(c)
	s.myTurn = false
	s.hasPlay = false
	s.trick = nil
	return c, true
}

func (s *Seat) clearTurn() {
	s.mu.Lock()
	s.myTurn = false
	s.hasPlay = false
	s.trick = nil
	s.mu.Unlock()
}

// HandleLine processes one inbound line from the reader loop. A legal
// play proposal is accepted and wakes the blocked RequestPlay; an
// illegal one (out of turn, stale trick number, card not held, suit not
// followed) gets WRONG and the connection and turn stay open. The
// returned error, when non-nil, means the connection must be dropped.
func (s *Seat) HandleLine(c *Conn, line string) error {
	msg, err := protocol.ParseClientLine(line)
	if err != nil {
		return err
	}
	play, ok := msg.(protocol.Play)
	if !ok {
		// A second IAM on a claimed connection is a protocol error.
		return protocol.ErrMalformed
	}

	s.mu.Lock()
	if s.conn != c {
		s.mu.Unlock()
		return ErrSeatLost
	}
	trick := s.trick
	number := play.Trick
	if trick != nil {
		number = trick.Number()
	}
	legal := s.myTurn && !s.hasPlay && trick != nil &&
		play.Trick == trick.Number() &&
		s.hand.Has(play.Card) &&
		trick.FollowsSuit(play.Card, s.hand)
	if legal {
		s.accepted = play.Card
		s.hasPlay = true
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()

	if !legal {
		return c.WriteLine(protocol.FormatWrong(number))
	}
	return nil
}

// ReadLoop pumps the connection until it dies. One goroutine per live
// connection; it ends itself by dropping the connection on any protocol
// error or EOF.
func (s *Seat) ReadLoop(c *Conn) {
	for {
		line, err := c.ReadLine()
		if err != nil {
			s.Drop(c)
			return
		}
		if err := s.HandleLine(c, line); err != nil {
			s.logger.Warn("protocol error", "conn", c.ID(), "err", err)
			s.Drop(c)
			return
		}
	}
}
