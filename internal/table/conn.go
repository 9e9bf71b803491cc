package table

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hearts-lite/internal/audit"
	"hearts-lite/internal/protocol"
)

const writeTimeout = 10 * time.Second

// Conn is one accepted socket. Writes are serialized by its own mutex
// so trick pushes, broadcasts and rejections never interleave on the
// wire; a seat swaps the whole handle on reconnect rather than mutating
// a shared one. Every line in either direction is tapped into the audit
// sink.
type Conn struct {
	id   string
	sock net.Conn
	r    *bufio.Reader
	sink audit.Sink
	seat string

	wmu sync.Mutex
}

// NewConn wraps an accepted socket. The seat label starts unknown and
// is stamped by Bind once the claim resolves.
func NewConn(sock net.Conn, sink audit.Sink) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		sock: sock,
		r:    bufio.NewReaderSize(sock, protocol.MaxLineBytes),
		sink: sink,
		seat: "?",
	}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) LocalAddr() string { return c.sock.LocalAddr().String() }

func (c *Conn) RemoteAddr() string { return c.sock.RemoteAddr().String() }

// Bind stamps the seat label used in audit records. Called once, after
// the claim succeeds and before the reader loop starts.
func (c *Conn) Bind(seat string) { c.seat = seat }

// WriteLine sends one line, appending the terminator.
func (c *Conn) WriteLine(line string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.sock.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := io.WriteString(c.sock, line+protocol.Terminator)
	if err == nil {
		c.audit(audit.DirOut, line)
	}
	return err
}

// ReadLine blocks for the next terminated line and returns it without
// the terminator. A line that grows past the protocol bound without a
// terminator, or one not ending in "\r\n", is a protocol error.
func (c *Conn) ReadLine() (string, error) {
	var buf []byte
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return "", err
		}
		buf = append(buf, b)
		if b == '\n' {
			break
		}
		if len(buf) >= protocol.MaxLineBytes {
			return "", ErrLineTooLong
		}
	}
	line := string(buf)
	if !strings.HasSuffix(line, protocol.Terminator) {
		return "", protocol.ErrMalformed
	}
	line = strings.TrimSuffix(line, protocol.Terminator)
	c.audit(audit.DirIn, line)
	return line, nil
}

func (c *Conn) Close() error {
	return c.sock.Close()
}

func (c *Conn) audit(dir audit.Direction, line string) {
	c.sink.Record(audit.Entry{
		Time:       time.Now(),
		ConnID:     c.id,
		Seat:       c.seat,
		Direction:  dir,
		LocalAddr:  c.LocalAddr(),
		RemoteAddr: c.RemoteAddr(),
		Line:       line,
	})
}
