// Package deal supplies the rounds a match plays. The standard source
// is a text file, one block per round: a header line with the round
// type digit and the starting seat letter, then four lines holding the
// dealt 13-card hands in N, E, S, W order.
package deal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"hearts-lite/hearts"
)

// Source yields successive round descriptors. Next returns io.EOF once
// the source is exhausted, which is the match's only controlled end.
type Source interface {
	Next() (hearts.Deal, error)
}

// FileSource reads deal blocks from a file.
type FileSource struct {
	f    *os.File
	sc   *bufio.Scanner
	line int
}

func Open(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{f: f, sc: bufio.NewScanner(f)}, nil
}

func (s *FileSource) Close() error {
	return s.f.Close()
}

// Next parses the next round block. Every deal is validated to cover
// the full deck before it is handed out; a malformed block is an error,
// not an end of input.
func (s *FileSource) Next() (hearts.Deal, error) {
	var d hearts.Deal

	header, err := s.next()
	if err != nil {
		return d, err
	}
	if len(header) != 2 {
		return d, fmt.Errorf("line %d: bad round header %q", s.line, header)
	}
	d.Type = hearts.RoundType(header[0] - '0')
	starting, err := hearts.ParseSeat(header[1])
	if err != nil {
		return d, fmt.Errorf("line %d: %w", s.line, err)
	}
	d.Starting = starting

	for _, seat := range hearts.AllSeats() {
		hand, err := s.next()
		if err == io.EOF {
			return d, fmt.Errorf("line %d: truncated deal block", s.line)
		}
		if err != nil {
			return d, err
		}
		d.Hands[seat] = hand
	}

	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("line %d: %w", s.line, err)
	}
	return d, nil
}

// next returns the next non-blank line.
func (s *FileSource) next() (string, error) {
	for s.sc.Scan() {
		s.line++
		line := strings.TrimSpace(s.sc.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
