package table

import (
	"context"
	"time"

	"hearts-lite/hearts"
)

// Table groups the four seat sessions. Seats are created once and never
// replaced; all per-connection churn happens inside each Seat.
type Table struct {
	seats [hearts.NumSeats]*Seat
}

func New(turnTimeout time.Duration) *Table {
	t := &Table{}
	for _, s := range hearts.AllSeats() {
		t.seats[s] = NewSeat(s, turnTimeout)
	}
	return t
}

// Seat returns the session for one position.
func (t *Table) Seat(s hearts.Seat) *Seat {
	return t.seats[s]
}

// WaitAll blocks until every seat holds a live connection. It waits on
// one seat at a time; a seat that drops while a later one is awaited is
// caught by the caller's next retryable operation, not here.
func (t *Table) WaitAll(ctx context.Context) error {
	for _, s := range hearts.AllSeats() {
		if err := t.seats[s].WaitConnected(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Connected lists the seats currently holding live connections, in
// N, E, S, W order. Used for the BUSY rejection line.
func (t *Table) Connected() []hearts.Seat {
	var out []hearts.Seat
	for _, s := range hearts.AllSeats() {
		if t.seats[s].Connected() {
			out = append(out, s)
		}
	}
	return out
}
