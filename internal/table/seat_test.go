package table

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"hearts-lite/hearts"
	"hearts-lite/internal/audit"
)

var rankTokens = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

func suitHand(suit string) string {
	var sb strings.Builder
	for _, r := range rankTokens {
		sb.WriteString(r)
		sb.WriteString(suit)
	}
	return sb.String()
}

func testDeal(typ hearts.RoundType, starting hearts.Seat) hearts.Deal {
	return hearts.Deal{
		Type:     typ,
		Starting: starting,
		Hands: [hearts.NumSeats]string{
			suitHand("C"), suitHand("D"), suitHand("H"), suitHand("S"),
		},
	}
}

// wireClient drives the far end of a net.Pipe like a real client: a
// goroutine keeps reading so server writes never block.
type wireClient struct {
	conn  net.Conn
	lines chan string
}

func startClient(t *testing.T, conn net.Conn) *wireClient {
	t.Helper()
	w := &wireClient{conn: conn, lines: make(chan string, 16)}
	go func() {
		defer close(w.lines)
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			w.lines <- strings.TrimSuffix(line, "\r\n")
		}
	}()
	return w
}

func (w *wireClient) send(t *testing.T, line string) {
	t.Helper()
	if _, err := w.conn.Write([]byte(line + "\r\n")); err != nil {
		t.Fatalf("client write %q: %v", line, err)
	}
}

func (w *wireClient) expect(t *testing.T, want string) {
	t.Helper()
	select {
	case got, ok := <-w.lines:
		if !ok {
			t.Fatalf("connection closed while expecting %q", want)
		}
		if got != want {
			t.Fatalf("received %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out expecting %q", want)
	}
}

func (w *wireClient) expectClosed(t *testing.T) {
	t.Helper()
	for {
		select {
		case _, ok := <-w.lines:
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("connection still open")
		}
	}
}

// newSession wires a seat to a fresh claimed connection with its reader
// loop running, and returns the client end.
func newSession(t *testing.T, seat *Seat) *wireClient {
	t.Helper()
	server, client := net.Pipe()
	conn := NewConn(server, audit.NopSink{})
	w := startClient(t, client)
	if err := seat.Claim(conn); err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	conn.Bind(seat.ID().String())
	go seat.ReadLoop(conn)
	return w
}

func TestClaimOccupiedSeat(t *testing.T) {
	seat := NewSeat(hearts.SeatNorth, time.Second)
	newSession(t, seat)

	server, client := net.Pipe()
	defer client.Close()
	if err := seat.Claim(NewConn(server, audit.NopSink{})); err != ErrSeatOccupied {
		t.Fatalf("second Claim err = %v, want ErrSeatOccupied", err)
	}
	if !seat.Connected() {
		t.Fatalf("live session lost after rejected claim")
	}
}

func TestRequestPlayAcceptsLegalCard(t *testing.T) {
	seat := NewSeat(hearts.SeatNorth, 2*time.Second)
	w := newSession(t, seat)

	round := hearts.NewRound(testDeal(hearts.RoundTricks, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL1N"+suitHand("C"))

	trick := hearts.NewTrick(hearts.SeatNorth, 1, hearts.RoundTricks)
	go func() {
		w.expect(t, "TRICK1")
		w.send(t, "TRICK12C")
	}()

	c, err := seat.RequestPlay(trick)
	if err != nil {
		t.Fatalf("RequestPlay err: %v", err)
	}
	if c.String() != "2C" {
		t.Errorf("accepted card %s, want 2C", c)
	}
	if trick.PlayCount() != 1 {
		t.Errorf("trick holds %d cards, want 1", trick.PlayCount())
	}
}

func TestIllegalPlaysGetWrongAndTurnStaysOpen(t *testing.T) {
	seat := NewSeat(hearts.SeatNorth, 2*time.Second)
	w := newSession(t, seat)

	round := hearts.NewRound(testDeal(hearts.RoundTricks, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL1N"+suitHand("C"))

	trick := hearts.NewTrick(hearts.SeatNorth, 4, hearts.RoundTricks)
	go func() {
		w.expect(t, "TRICK4")
		w.send(t, "TRICK54C") // stale trick number
		w.expect(t, "WRONG4")
		w.send(t, "TRICK42D") // card not held
		w.expect(t, "WRONG4")
		w.send(t, "TRICK44C")
	}()

	c, err := seat.RequestPlay(trick)
	if err != nil {
		t.Fatalf("RequestPlay err: %v", err)
	}
	if c.String() != "4C" {
		t.Errorf("accepted card %s, want 4C", c)
	}
	if !seat.Connected() {
		t.Errorf("seat disconnected by rule violations")
	}
}

func TestSuitFollowingEnforced(t *testing.T) {
	seat := NewSeat(hearts.SeatSouth, 2*time.Second)
	w := newSession(t, seat)

	// South holds hearts in this deal; the lead is a heart, so a
	// spade proposal must be rejected even though spades are not held.
	round := hearts.NewRound(testDeal(hearts.RoundHearts, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL2N"+suitHand("H"))

	trick := hearts.NewTrick(hearts.SeatWest, 2, hearts.RoundHearts)
	if err := trick.AddCard(mustCardT(t, "AH")); err != nil {
		t.Fatalf("AddCard err: %v", err)
	}
	go func() {
		w.expect(t, "TRICK2AH")
		w.send(t, "TRICK22S")
		w.expect(t, "WRONG2")
		w.send(t, "TRICK22H")
	}()

	c, err := seat.RequestPlay(trick)
	if err != nil {
		t.Fatalf("RequestPlay err: %v", err)
	}
	if c.String() != "2H" {
		t.Errorf("accepted card %s, want 2H", c)
	}
}

func TestRequestPlayTimeoutDisconnects(t *testing.T) {
	seat := NewSeat(hearts.SeatNorth, 50*time.Millisecond)
	w := newSession(t, seat)

	round := hearts.NewRound(testDeal(hearts.RoundTricks, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL1N"+suitHand("C"))

	trick := hearts.NewTrick(hearts.SeatNorth, 1, hearts.RoundTricks)
	if _, err := seat.RequestPlay(trick); err != ErrSeatLost {
		t.Fatalf("RequestPlay err = %v, want ErrSeatLost", err)
	}
	if seat.Connected() {
		t.Errorf("seat still connected after timeout")
	}
	w.expectClosed(t)
}

// slowSink stalls every record the way an overloaded store would.
type slowSink struct{ delay time.Duration }

func (s slowSink) Record(audit.Entry) { time.Sleep(s.delay) }

func (slowSink) Recent(context.Context, int) ([]audit.Entry, error) { return nil, nil }

func (slowSink) Close() error { return nil }

func TestSlowAuditStoreDoesNotStallTurns(t *testing.T) {
	seat := NewSeat(hearts.SeatNorth, 100*time.Millisecond)
	server, client := net.Pipe()
	conn := NewConn(server, audit.Async(slowSink{delay: 400 * time.Millisecond}))
	w := startClient(t, client)
	if err := seat.Claim(conn); err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	conn.Bind(seat.ID().String())
	go seat.ReadLoop(conn)

	round := hearts.NewRound(testDeal(hearts.RoundTricks, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL1N"+suitHand("C"))

	trick := hearts.NewTrick(hearts.SeatNorth, 1, hearts.RoundTricks)
	go func() {
		w.expect(t, "TRICK1")
		w.send(t, "TRICK12C")
	}()

	// The store is four turn timeouts behind; the prompt answer must
	// still land inside the timeout.
	c, err := seat.RequestPlay(trick)
	if err != nil {
		t.Fatalf("RequestPlay err: %v", err)
	}
	if c.String() != "2C" {
		t.Errorf("accepted card %s, want 2C", c)
	}
	if !seat.Connected() {
		t.Errorf("seat disconnected by audit store latency")
	}
}

func TestReconnectReplaysDealAndTakenTricks(t *testing.T) {
	seat := NewSeat(hearts.SeatEast, 2*time.Second)
	w := newSession(t, seat)

	round := hearts.NewRound(testDeal(hearts.RoundQueens, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL3N"+suitHand("D"))

	trick := hearts.NewTrick(hearts.SeatNorth, 1, hearts.RoundQueens)
	for _, token := range []string{"2C", "2D", "2H", "2S"} {
		if err := trick.AddCard(mustCardT(t, token)); err != nil {
			t.Fatalf("AddCard err: %v", err)
		}
	}
	round.LogTrick(trick)

	w.conn.Close()
	waitDisconnected(t, seat)

	w2 := newSession(t, seat)
	w2.expect(t, "DEAL3N"+suitHand("D"))
	w2.expect(t, "TAKEN12C2D2H2SN")
}

func TestClaimFailsMidReplayAndLeavesSeatFree(t *testing.T) {
	seat := NewSeat(hearts.SeatEast, 2*time.Second)
	w := newSession(t, seat)

	round := hearts.NewRound(testDeal(hearts.RoundQueens, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL3N"+suitHand("D"))

	for n, lead := range []string{"2", "3"} {
		trick := hearts.NewTrick(hearts.SeatNorth, n+1, hearts.RoundQueens)
		for _, suit := range []string{"C", "D", "H", "S"} {
			if err := trick.AddCard(mustCardT(t, lead+suit)); err != nil {
				t.Fatalf("AddCard err: %v", err)
			}
		}
		round.LogTrick(trick)
	}

	w.conn.Close()
	waitDisconnected(t, seat)

	// The claimer takes the replayed DEAL and then vanishes, so the
	// replay fails partway through.
	server, client := net.Pipe()
	go func() {
		r := bufio.NewReader(client)
		_, _ = r.ReadString('\n')
		client.Close()
	}()
	if err := seat.Claim(NewConn(server, audit.NopSink{})); err == nil {
		t.Fatalf("Claim succeeded despite a replay failure")
	}
	if seat.Connected() {
		t.Fatalf("seat connected after a failed replay")
	}

	// A fresh claim gets the complete replay.
	w2 := newSession(t, seat)
	w2.expect(t, "DEAL3N"+suitHand("D"))
	w2.expect(t, "TAKEN12C2D2H2SN")
	w2.expect(t, "TAKEN23C3D3H3SN")
}

func TestReconnectAfterFinishedRoundSkipsReplay(t *testing.T) {
	seat := NewSeat(hearts.SeatNorth, 2*time.Second)
	w := newSession(t, seat)

	round := hearts.NewRound(testDeal(hearts.RoundTricks, hearts.SeatNorth))
	if err := seat.StartRound(round); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w.expect(t, "DEAL1N"+suitHand("C"))

	for n, lead := range rankTokens {
		trick := hearts.NewTrick(hearts.SeatNorth, n+1, hearts.RoundTricks)
		for _, suit := range []string{"C", "D", "H", "S"} {
			if err := trick.AddCard(mustCardT(t, lead+suit)); err != nil {
				t.Fatalf("AddCard err: %v", err)
			}
		}
		round.LogTrick(trick)
	}
	if !round.Finished() {
		t.Fatalf("round not finished after 13 logged tricks")
	}

	w.conn.Close()
	waitDisconnected(t, seat)

	// No replay of the finished round; the next DEAL is the first line
	// the new connection sees.
	w2 := newSession(t, seat)
	next := hearts.NewRound(testDeal(hearts.RoundHearts, hearts.SeatEast))
	if err := seat.StartRound(next); err != nil {
		t.Fatalf("StartRound err: %v", err)
	}
	w2.expect(t, "DEAL2E"+suitHand("C"))
}

func TestMalformedLineDisconnectsRepeatably(t *testing.T) {
	seat := NewSeat(hearts.SeatWest, 2*time.Second)

	for i := 0; i < 2; i++ {
		w := newSession(t, seat)
		w.send(t, "HELLO")
		w.expectClosed(t)
		waitDisconnected(t, seat)
	}
}

func TestOversizeLineDisconnects(t *testing.T) {
	seat := NewSeat(hearts.SeatWest, 2*time.Second)
	w := newSession(t, seat)
	// The server may close mid-write once the bound is crossed, so the
	// write error is not interesting.
	_, _ = w.conn.Write([]byte(strings.Repeat("A", 300)))
	w.expectClosed(t)
	waitDisconnected(t, seat)
}

func waitDisconnected(t *testing.T, seat *Seat) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for seat.Connected() {
		if time.Now().After(deadline) {
			t.Fatalf("seat never disconnected")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
