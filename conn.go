package sockets

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/errgroup"
)

// connState is the engine state shared between the user-facing Client and
// its two worker goroutines. Both workers hold the same *connState, so the
// Client value may move freely.
type connState struct {
	running   atomic.Bool
	sendTasks *Synchronized[ringQueue[*sendTask]]
	recvTasks *Synchronized[ringQueue[*receiveTask]]
	sentCond  *sync.Cond
	recvCond  *sync.Cond
	config    ClientConfig
}

func newConnState(config *ClientConfig) *connState {
	cfg := ClientConfig{}
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	s := &connState{
		sendTasks: NewSynchronized(newRingQueue[*sendTask](16)),
		recvTasks: NewSynchronized(newRingQueue[*receiveTask](16)),
		config:    cfg,
	}
	s.sentCond = s.sendTasks.NewCond()
	s.recvCond = s.recvTasks.NewCond()
	s.running.Store(true)

	return s
}

func (s *connState) isRunning() bool {
	return s.running.Load()
}

// stopRunning flips the engine into Stopping. The flag is cleared under each
// queue lock in turn so that a worker evaluating its wait predicate cannot
// miss the wakeup.
func (s *connState) stopRunning() {
	s.sendTasks.Apply(func(_ *ringQueue[*sendTask]) {
		s.running.Store(false)
	})
	s.sentCond.Broadcast()

	s.recvTasks.Apply(func(_ *ringQueue[*receiveTask]) {
		s.running.Store(false)
	})
	s.recvCond.Broadcast()
}

// clearQueues drains both queues, completing every remaining task with its
// terminal empty value: 0 for sends, an empty byte slice for receives.
// Tasks are popped under the lock and completed outside of it; concurrent
// drains split the work without double-completing.
func (s *connState) clearQueues() {
	for {
		var task *receiveTask
		s.recvTasks.Apply(func(q *ringQueue[*receiveTask]) {
			task, _ = q.pop()
		})
		if task == nil {
			break
		}
		task.fut.complete([]byte{})
	}

	for {
		var task *sendTask
		s.sendTasks.Apply(func(q *ringQueue[*sendTask]) {
			task, _ = q.pop()
		})
		if task == nil {
			break
		}
		task.fut.complete(0)
	}
}

// keepSending is the sender worker. It pops send tasks in FIFO order and
// transmits them; when the queue is empty it blocks on the data-sent
// condition until a task is posted or the engine stops.
func (s *connState) keepSending(conn net.Conn) error {
	defer s.clearQueues()

	for s.isRunning() {
		var task *sendTask
		s.sendTasks.Apply(func(q *ringQueue[*sendTask]) {
			task, _ = q.pop()
		})

		if task == nil {
			s.sendTasks.Wait(s.sentCond, func(q *ringQueue[*sendTask]) bool {
				return !s.isRunning() || q.len() > 0
			})
			continue
		}

		if err := processSendTask(conn, task); err != nil {
			s.stopRunning()
			return err
		}
	}

	return nil
}

// keepReceiving is the receiver worker, symmetric to keepSending.
func (s *connState) keepReceiving(conn net.Conn) error {
	defer s.clearQueues()

	for s.isRunning() {
		var task *receiveTask
		s.recvTasks.Apply(func(q *ringQueue[*receiveTask]) {
			task, _ = q.pop()
		})

		if task == nil {
			s.recvTasks.Wait(s.recvCond, func(q *ringQueue[*receiveTask]) bool {
				return !s.isRunning() || q.len() > 0
			})
			continue
		}

		if err := s.processReceiveTask(conn, task); err != nil {
			s.stopRunning()
			return err
		}
	}

	return nil
}

// processSendTask transmits all bytes of the task, advancing over partial
// writes. A non-nil return means the connection is dead; the task's future
// has been completed either way.
func processSendTask(conn net.Conn, task *sendTask) error {
	sent := 0
	for sent < len(task.data) {
		n, err := conn.Write(task.data[sent:])
		sent += n
		if err != nil {
			task.fut.complete(0)
			return fmt.Errorf("connection lost after writing %d of %d bytes: %w", sent, len(task.data), err)
		}
	}

	task.fut.complete(sent)
	return nil
}

// processReceiveTask accumulates bytes for the task until a terminal
// condition fires: deadline reached, requested count reached, first data for
// an up-to task, or peer shutdown. A non-nil return means the connection is
// dead; the task's future has been completed either way.
func (s *connState) processReceiveTask(conn net.Conn, task *receiveTask) error {
	accumulated := bytebufferpool.Get()
	defer bytebufferpool.Put(accumulated)

	chunk := getChunk(task.maxBytes)
	defer putChunk(chunk)

	for {
		// Engine shutdown terminates the in-flight task with its terminal
		// value so that Close is bounded by one readiness tick.
		if !s.isRunning() {
			if task.kind == receiveExact {
				task.fut.complete([]byte{})
			} else {
				task.fut.complete(copyBytes(accumulated.B))
			}
			return nil
		}

		if !time.Now().Before(task.deadline) {
			if task.kind == receiveExact {
				task.fut.fail(&TimeoutError{})
				return nil
			}
			task.fut.complete(copyBytes(accumulated.B))
			return nil
		}

		// The readiness poll and the read are folded into a single short
		// read deadline: a timeout means "not ready".
		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadinessTick))
		n, err := conn.Read(chunk[:task.maxBytes-accumulated.Len()])
		if n > 0 {
			_, _ = accumulated.Write(chunk[:n])

			// Bytes that satisfy the task win over an error delivered in
			// the same read; the error still kills the connection.
			if task.kind == receiveUpTo || accumulated.Len() >= task.maxBytes {
				task.fut.complete(copyBytes(accumulated.B))
				if err != nil && !isTimeout(err) {
					return fmt.Errorf("connection lost during receive: %w", err)
				}
				return nil
			}
		}

		if err != nil && !isTimeout(err) {
			if task.kind == receiveExact {
				task.fut.fail(&ReadError{Err: err})
				return fmt.Errorf("connection lost after reading %d of %d bytes: %w",
					accumulated.Len(), task.maxBytes, err)
			}
			task.fut.complete(copyBytes(accumulated.B))
			return fmt.Errorf("connection lost during receive: %w", err)
		}
	}
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Client is a connected TCP endpoint. Sends and receives are posted as tasks
// and completed asynchronously by two dedicated worker goroutines; every
// posting call returns a Future.
type Client struct {
	conn      net.Conn
	state     *connState
	workers   *errgroup.Group
	local     AddressInfo
	remote    AddressInfo
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to host:port over the given address family and returns the
// connected endpoint with its workers running. Failures are reported as
// *SetupError.
func Dial(family AddressFamily, host string, port uint16) (*Client, error) {
	return DialConfig(family, host, port, nil)
}

// DialConfig is Dial with explicit endpoint configuration.
func DialConfig(family AddressFamily, host string, port uint16, config *ClientConfig) (*Client, error) {
	dialer := net.Dialer{Control: controlDefaultSocketOptions}
	conn, err := dialer.Dial(family.network(), net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return nil, &SetupError{Op: "connect", Err: err}
	}

	return newClient(conn, config), nil
}

// newClient wraps an established connection and spawns the worker pair.
func newClient(conn net.Conn, config *ClientConfig) *Client {
	c := &Client{
		conn:   conn,
		state:  newConnState(config),
		local:  addressInfoFromAddr(conn.LocalAddr()),
		remote: addressInfoFromAddr(conn.RemoteAddr()),
	}

	eg := &errgroup.Group{}
	eg.Go(func() error { return c.state.keepSending(conn) })
	eg.Go(func() error { return c.state.keepReceiving(conn) })
	c.workers = eg

	return c
}

// IsConnected reports whether the engine is still running. It turns false
// once a send or receive task observes the peer's disconnect or a socket
// error, or Close is called; a disconnect with no task in flight goes
// unnoticed until the next task.
func (c *Client) IsConnected() bool {
	return c.state.isRunning()
}

// LocalAddress returns the local end of the connection.
func (c *Client) LocalAddress() AddressInfo {
	return c.local
}

// RemoteAddress returns the peer's end of the connection.
func (c *Client) RemoteAddress() AddressInfo {
	return c.remote
}

// Conn exposes the underlying connection for inspection. Performing I/O on
// it directly interferes with the workers.
func (c *Client) Conn() net.Conn {
	return c.conn
}

// Send posts data for transmission and returns a future that resolves to the
// number of bytes sent. Empty payloads are rejected with ErrEmptySend. After
// shutdown the future resolves immediately to 0.
func (c *Client) Send(data []byte) (*Future[int], error) {
	if len(data) == 0 {
		return nil, ErrEmptySend
	}

	task := &sendTask{fut: newFuture[int](), data: copyBytes(data)}

	enqueued := false
	c.state.sendTasks.Apply(func(q *ringQueue[*sendTask]) {
		if !c.state.isRunning() {
			task.fut.complete(0)
			return
		}
		q.push(task)
		enqueued = true
	})

	if enqueued {
		c.state.sentCond.Signal()
	}

	return task.fut, nil
}

// SendString posts the bytes of text for transmission.
func (c *Client) SendString(text string) (*Future[int], error) {
	return c.Send([]byte(text))
}

// SendBuffer posts the contents of a MessageBuffer for transmission.
func (c *Client) SendBuffer(buf *MessageBuffer) (*Future[int], error) {
	return c.Send(buf.Bytes())
}

// SendValues encodes each value in network byte order, in argument order,
// and posts the concatenation. Values must be fixed-width integers or bools.
func (c *Client) SendValues(values ...any) (*Future[int], error) {
	buf := &MessageBuffer{}
	for _, v := range values {
		if err := buf.AppendValue(v); err != nil {
			return nil, err
		}
	}

	return c.Send(buf.Bytes())
}

// Receive posts an up-to receive for at most maxBytes with the default
// timeout. The future resolves to whatever arrived first, possibly empty.
func (c *Client) Receive(maxBytes int) (*Future[[]byte], error) {
	return c.post(maxBytes, receiveUpTo, c.state.config.ReceiveTimeout)
}

// ReceiveTimeout posts an up-to receive with an explicit timeout.
func (c *Client) ReceiveTimeout(maxBytes int, timeout time.Duration) (*Future[[]byte], error) {
	return c.post(maxBytes, receiveUpTo, timeout)
}

// ReceiveExact posts a receive that resolves only once exactly numBytes have
// arrived, using the default timeout. On deadline the future fails with
// *TimeoutError; on peer shutdown with *ReadError.
func (c *Client) ReceiveExact(numBytes int) (*Future[[]byte], error) {
	return c.post(numBytes, receiveExact, c.state.config.ReceiveTimeout)
}

// ReceiveExactTimeout posts an exact receive with an explicit timeout.
func (c *Client) ReceiveExactTimeout(numBytes int, timeout time.Duration) (*Future[[]byte], error) {
	return c.post(numBytes, receiveExact, timeout)
}

// ReceiveString posts an up-to receive and resolves to the bytes as a
// string.
func (c *Client) ReceiveString(maxBytes int) (*Future[string], error) {
	inner, err := c.Receive(maxBytes)
	if err != nil {
		return nil, err
	}

	out := newFuture[string]()
	go func() {
		data, err := inner.Await()
		if err != nil {
			out.fail(err)
			return
		}
		out.complete(string(data))
	}()

	return out, nil
}

// ReceiveInto posts an exact receive sized to the destinations and, on
// completion, decodes one value per destination pointer in argument order.
// The future resolves to the number of bytes decoded, or 0 if the engine
// shut down before the data arrived. A timeout of 0 or less applies the
// default. Destinations must be pointers to fixed-width integers or bools.
func (c *Client) ReceiveInto(timeout time.Duration, dsts ...any) (*Future[int], error) {
	total := 0
	for _, dst := range dsts {
		size, err := sizeOfTarget(dst)
		if err != nil {
			return nil, err
		}
		total += size
	}
	if total == 0 {
		return nil, ErrZeroReceive
	}

	if timeout <= 0 {
		timeout = c.state.config.ReceiveTimeout
	}

	inner, err := c.post(total, receiveExact, timeout)
	if err != nil {
		return nil, err
	}

	out := newFuture[int]()
	go func() {
		data, err := inner.Await()
		if err != nil {
			out.fail(err)
			return
		}
		if len(data) < total {
			// terminal empty value from engine shutdown
			out.complete(0)
			return
		}
		if !NewMessageBuffer(data).TryExtractInto(dsts...) {
			out.fail(ErrFraming)
			return
		}
		out.complete(total)
	}()

	return out, nil
}

// ReceiveValue posts an exact receive for a single integral value and
// decodes it from network byte order. A timeout of 0 or less applies the
// default.
func ReceiveValue[T Integral](c *Client, timeout time.Duration) (*Future[T], error) {
	size := sizeOfIntegral[T]()

	if timeout <= 0 {
		timeout = c.state.config.ReceiveTimeout
	}

	inner, err := c.post(size, receiveExact, timeout)
	if err != nil {
		return nil, err
	}

	out := newFuture[T]()
	go func() {
		var zero T
		data, err := inner.Await()
		if err != nil {
			out.fail(err)
			return
		}
		if len(data) < size {
			out.complete(zero)
			return
		}
		value, _ := TryExtract[T](NewMessageBuffer(data))
		out.complete(value)
	}()

	return out, nil
}

// post enqueues a receive task. Zero-byte receives are rejected; after
// shutdown the future resolves immediately to an empty slice.
func (c *Client) post(maxBytes int, kind receiveKind, timeout time.Duration) (*Future[[]byte], error) {
	if maxBytes <= 0 {
		return nil, ErrZeroReceive
	}

	task := &receiveTask{
		fut:      newFuture[[]byte](),
		maxBytes: maxBytes,
		kind:     kind,
		deadline: time.Now().Add(timeout),
	}

	enqueued := false
	c.state.recvTasks.Apply(func(q *ringQueue[*receiveTask]) {
		if !c.state.isRunning() {
			task.fut.complete([]byte{})
			return
		}
		q.push(task)
		enqueued = true
	})

	if enqueued {
		c.state.recvCond.Signal()
	}

	return task.fut, nil
}

// Close shuts the endpoint down: the engine stops accepting tasks, pending
// tasks complete with their terminal empty values, both workers are joined,
// and the socket is closed. Close is idempotent and safe to race with
// posting calls.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.state.stopRunning()

		// Unblock any in-flight read or write so the workers observe the
		// stop promptly.
		_ = c.conn.SetDeadline(time.Now())

		if err := c.workers.Wait(); err != nil {
			c.state.config.Logger.Debugf("worker exited with: %v", err)
		}

		c.state.clearQueues()
		c.closeErr = c.conn.Close()
	})

	return c.closeErr
}
