package table

import "errors"

var (
	// ErrSeatOccupied rejects a claim on a seat with a live connection.
	ErrSeatOccupied = errors.New("seat already occupied")

	// ErrSeatLost reports that the seat's connection dropped or timed
	// out. It is retryable: the caller waits for a reconnect and tries
	// again.
	ErrSeatLost = errors.New("seat connection lost")

	// ErrLineTooLong reports an inbound line that exceeded the protocol
	// bound without a terminator.
	ErrLineTooLong = errors.New("inbound line too long")
)
