// Package game drives the match: it deals rounds from the deal source,
// runs each trick by asking one seat at a time for a play, credits
// points, and broadcasts outcomes. Everything retryable is expressed as
// a blocking wait for the seat plus a single attempt; a seat that drops
// stalls its turn until it returns, it is never skipped.
package game

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"hearts-lite/hearts"
	"hearts-lite/internal/deal"
	"hearts-lite/internal/protocol"
	"hearts-lite/internal/table"
)

// Loop is the match coordinator. One goroutine runs it for the life of
// the process.
type Loop struct {
	table  *table.Table
	deals  deal.Source
	logger *log.Logger

	// Watch, when set, receives a copy of every broadcast line plus
	// deal announcements. It feeds the admin live view and must not
	// block.
	Watch func(line string)
}

func New(tbl *table.Table, src deal.Source) *Loop {
	return &Loop{
		table:  tbl,
		deals:  src,
		logger: log.WithPrefix("game"),
	}
}

// Run plays rounds until the deal source is exhausted, which is the
// match's only controlled end. The context cancels the match from the
// outside; connection failures never end it.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.table.WaitAll(ctx); err != nil {
		return err
	}
	l.logger.Info("all seats claimed, match starting")

	for {
		d, err := l.deals.Next()
		if errors.Is(err, io.EOF) {
			l.logger.Info("deal source exhausted, match over")
			return nil
		}
		if err != nil {
			return err
		}
		if err := l.playRound(ctx, hearts.NewRound(d)); err != nil {
			return err
		}
	}
}

func (l *Loop) playRound(ctx context.Context, r *hearts.Round) error {
	l.logger.Info("round start", "type", int(r.Type()), "starting", r.Starting())
	l.watch(protocol.FormatDeal(r.Type(), r.Starting(), ""))

	// Dealing: every seat gets its hand; a seat lost mid-deal is waited
	// out and re-dealt (the duplicate DEAL is a harmless hand reset).
	for _, s := range hearts.AllSeats() {
		seat := l.table.Seat(s)
		for {
			if err := seat.WaitConnected(ctx); err != nil {
				return err
			}
			err := seat.StartRound(r)
			if err == nil {
				break
			}
			if !errors.Is(err, table.ErrSeatLost) {
				return err
			}
		}
	}

	leader := r.Starting()
	for n := 1; n <= hearts.TricksPerRound && !r.Finished(); n++ {
		trick := hearts.NewTrick(leader, n, r.Type())

		// Collecting: strict turn order, one outstanding request.
		for trick.PlayCount() < hearts.NumSeats {
			seat := l.table.Seat(trick.Current())
			if err := seat.WaitConnected(ctx); err != nil {
				return err
			}
			c, err := seat.RequestPlay(trick)
			if errors.Is(err, table.ErrSeatLost) {
				continue
			}
			if err != nil {
				return err
			}
			l.logger.Debug("play accepted", "seat", seat.ID(), "trick", n, "card", c)
		}

		// Resolving: credit the winner, then log the trick so a
		// reconnect during the broadcast already sees it. A seat that
		// drops mid-broadcast therefore gets this trick twice, once
		// from the replay and once from the retried send; TAKEN is an
		// idempotent hand update on the client.
		winner := trick.Taker()
		credited := r.AddPoints(winner, trick.Points())
		r.LogTrick(trick)
		l.logger.Info("trick taken", "trick", n, "winner", winner, "points", credited)

		// Broadcasting: retry per seat, independent of the others.
		if err := l.broadcast(ctx, protocol.FormatTaken(n, trick.Cards(), winner)); err != nil {
			return err
		}
		leader = winner
	}

	// RoundScoring: round points, then running match totals.
	var scores, totals [hearts.NumSeats]int
	for _, s := range hearts.AllSeats() {
		seat := l.table.Seat(s)
		scores[s] = r.Points(s)
		seat.AddTotal(scores[s])
		totals[s] = seat.Total()
	}
	if err := l.broadcast(ctx, protocol.FormatScore(scores)); err != nil {
		return err
	}
	if err := l.broadcast(ctx, protocol.FormatTotal(totals)); err != nil {
		return err
	}
	l.logger.Info("round over", "scores", scores, "totals", totals)
	return nil
}

// broadcast delivers one line to every seat, waiting out and retrying
// any seat whose connection fails mid-send.
func (l *Loop) broadcast(ctx context.Context, line string) error {
	for _, s := range hearts.AllSeats() {
		seat := l.table.Seat(s)
		for {
			if err := seat.WaitConnected(ctx); err != nil {
				return err
			}
			if seat.SendLine(line) == nil {
				break
			}
		}
	}
	l.watch(line)
	return nil
}

func (l *Loop) watch(line string) {
	if l.Watch != nil {
		l.Watch(line)
	}
}
