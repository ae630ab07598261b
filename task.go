package sockets

import "time"

// receiveKind selects the completion rule of a receive task.
type receiveKind uint8

const (
	// receiveUpTo completes after the first successful read with whatever
	// arrived, up to maxBytes.
	receiveUpTo receiveKind = iota
	// receiveExact completes only once exactly maxBytes have accumulated,
	// or fails with TimeoutError or ReadError.
	receiveExact
)

// sendTask represents a request to transmit all of data. The payload is
// non-empty at enqueue time; the posting API rejects empty sends.
type sendTask struct {
	fut  *Future[int]
	data []byte
}

// receiveTask represents a request to read up to (or exactly) maxBytes. The
// deadline is captured once at posting time.
type receiveTask struct {
	fut      *Future[[]byte]
	maxBytes int
	kind     receiveKind
	deadline time.Time
}
