// Package gateway accepts TCP connections and resolves seat claims.
// Each accepted socket gets one goroutine: it waits (bounded) for the
// opening IAM line, claims the requested seat, and then becomes that
// connection's reader loop. An occupied seat answers BUSY with every
// taken seat and closes; nothing about the live session changes.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"hearts-lite/internal/audit"
	"hearts-lite/internal/protocol"
	"hearts-lite/internal/table"
)

// DefaultClaimTimeout bounds how long an accepted socket may sit silent
// before sending its IAM.
const DefaultClaimTimeout = 10 * time.Second

type Gateway struct {
	tbl          *table.Table
	sink         audit.Sink
	ln           net.Listener
	claimTimeout time.Duration
	logger       *log.Logger
}

// Listen binds the dual-stack TCP listener. Port 0 picks an ephemeral
// port, readable afterwards via Port.
func Listen(port int, tbl *table.Table, sink audit.Sink) (*Gateway, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	return &Gateway{
		tbl:          tbl,
		sink:         sink,
		ln:           ln,
		claimTimeout: DefaultClaimTimeout,
		logger:       log.WithPrefix("gateway"),
	}, nil
}

// Port returns the bound listen port.
func (g *Gateway) Port() int {
	return g.ln.Addr().(*net.TCPAddr).Port
}

// Serve accepts until the context ends.
func (g *Gateway) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = g.ln.Close()
	}()
	g.logger.Info("listening", "addr", g.ln.Addr())
	for {
		sock, err := g.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go g.handle(sock)
	}
}

func (g *Gateway) handle(sock net.Conn) {
	conn := table.NewConn(sock, g.sink)

	_ = sock.SetReadDeadline(time.Now().Add(g.claimTimeout))
	line, err := conn.ReadLine()
	if err != nil {
		g.logger.Warn("claim read failed", "remote", sock.RemoteAddr(), "err", err)
		_ = conn.Close()
		return
	}
	_ = sock.SetReadDeadline(time.Time{})

	msg, err := protocol.ParseClientLine(line)
	if err != nil {
		g.logger.Warn("bad claim line", "remote", sock.RemoteAddr())
		_ = conn.Close()
		return
	}
	iam, ok := msg.(protocol.Iam)
	if !ok {
		g.logger.Warn("expected IAM", "remote", sock.RemoteAddr())
		_ = conn.Close()
		return
	}

	conn.Bind(iam.Seat.String())
	seat := g.tbl.Seat(iam.Seat)
	if err := seat.Claim(conn); err != nil {
		if errors.Is(err, table.ErrSeatOccupied) {
			_ = conn.WriteLine(protocol.FormatBusy(g.tbl.Connected()))
			g.logger.Info("seat busy", "seat", iam.Seat, "remote", sock.RemoteAddr())
		}
		_ = conn.Close()
		return
	}

	// This goroutine now belongs to the seat as its reader.
	seat.ReadLoop(conn)
}
