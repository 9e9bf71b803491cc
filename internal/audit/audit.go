// Package audit records every wire line the server sends or receives,
// tagged with the connection, seat and endpoints involved. Stores are
// selected by configuration; recording is fire-and-forget so a slow or
// broken store never stalls the game.
package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Direction tells whether a line arrived from the peer or was sent to it.
type Direction string

const (
	DirIn  Direction = "in"
	DirOut Direction = "out"
)

// Entry is one recorded wire line.
type Entry struct {
	Time       time.Time `json:"time"`
	ConnID     string    `json:"conn_id"`
	Seat       string    `json:"seat"`
	Direction  Direction `json:"direction"`
	LocalAddr  string    `json:"local_addr"`
	RemoteAddr string    `json:"remote_addr"`
	Line       string    `json:"line"`
}

// Sink accepts audit entries. Record never returns an error; store
// failures are logged by the implementation and the entry is dropped.
// Record is called on the wire path, under connection and seat locks,
// so it must not wait on storage; NewSink wraps every store in Async.
type Sink interface {
	Record(e Entry)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Record(Entry) {}

func (NopSink) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

func (NopSink) Close() error { return nil }

// recordQueueSize bounds how many entries may sit between the wire
// path and a store that has fallen behind.
const recordQueueSize = 256

// AsyncSink decouples Record from the store underneath: entries go
// through a buffered queue drained by one writer goroutine, and a full
// queue drops the entry instead of blocking the caller.
type AsyncSink struct {
	inner  Sink
	logger *log.Logger

	mu      sync.Mutex
	closed  bool
	entries chan Entry
	done    chan struct{}
}

// Async wraps a store for use on the wire path.
func Async(inner Sink) *AsyncSink {
	s := &AsyncSink{
		inner:   inner,
		logger:  log.WithPrefix("audit"),
		entries: make(chan Entry, recordQueueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for e := range s.entries {
		s.inner.Record(e)
	}
}

func (s *AsyncSink) Record(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.entries <- e:
	default:
		s.logger.Warn("queue full, entry dropped", "conn", e.ConnID)
	}
}

func (s *AsyncSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.inner.Recent(ctx, limit)
}

// Close drains the queue into the store, then closes the store.
func (s *AsyncSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()
	<-s.done
	return s.inner.Close()
}

const (
	ModeNop      = "nop"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

// NewSink builds the store named by mode. dsn is the sqlite file path
// or the postgres connection string; an empty dsn falls back to the
// store's default.
func NewSink(mode, dsn string) (Sink, error) {
	switch normalizeMode(mode) {
	case ModeNop:
		return NopSink{}, nil
	case ModeSQLite:
		sink, err := NewSQLiteSink(dsn)
		if err != nil {
			return nil, err
		}
		return Async(sink), nil
	case ModePostgres:
		sink, err := NewPostgresSink(dsn)
		if err != nil {
			return nil, err
		}
		return Async(sink), nil
	default:
		return nil, fmt.Errorf("invalid audit mode %q (supported: %s, %s, %s)",
			mode, ModeNop, ModeSQLite, ModePostgres)
	}
}

func normalizeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "none", "off", ModeNop:
		return ModeNop
	case ModeSQLite, "local":
		return ModeSQLite
	case ModePostgres, "postgresql", "pg", "db":
		return ModePostgres
	default:
		return strings.ToLower(strings.TrimSpace(mode))
	}
}
