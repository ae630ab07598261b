package sockets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jpillora/backoff"
)

// OnConnect receives every accepted connection as a ready-to-use Client. It
// runs synchronously on the accept goroutine, so it should either hand the
// endpoint to another owner quickly or close it.
type OnConnect func(client *Client)

// Server is a listening TCP endpoint. A single accept goroutine polls the
// listen socket, wraps accepted connections into Clients and hands them to
// the callback.
type Server struct {
	listener *net.TCPListener
	callback OnConnect
	config   ServerConfig
	local    AddressInfo
	stopChan chan struct{}
	stopOnce sync.Once
	acceptWG sync.WaitGroup
}

// NewServer binds and listens on the given port and starts the accept
// goroutine. Port 0 picks a free port, readable via LocalAddress. Failures
// are reported as *SetupError.
func NewServer(family AddressFamily, port uint16, callback OnConnect, config *ServerConfig) (*Server, error) {
	if callback == nil {
		return nil, &SetupError{Op: "listen", Err: errors.New("connect callback is required")}
	}

	cfg := ServerConfig{}
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	lc := net.ListenConfig{Control: controlDefaultSocketOptions}
	ln, err := lc.Listen(context.Background(), family.network(), fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, &SetupError{Op: "listen", Err: err}
	}

	s := &Server{
		listener: ln.(*net.TCPListener),
		callback: callback,
		config:   cfg,
		local:    addressInfoFromAddr(ln.Addr()),
		stopChan: make(chan struct{}),
	}

	s.acceptWG.Add(1)
	go s.acceptLoop()

	return s, nil
}

// LocalAddress returns the bound listen address.
func (s *Server) LocalAddress() AddressInfo {
	return s.local
}

// Stop signals the accept goroutine, waits for it to exit, and closes the
// listen socket. It is idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.acceptWG.Wait()

		if err := s.listener.Close(); err != nil {
			s.config.Logger.Warnf("closing listen socket: %v", err)
		}
	})
}

// Close stops the server. It implements io.Closer.
func (s *Server) Close() error {
	s.Stop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.acceptWG.Done()

	retry := &backoff.Backoff{
		Min:    10 * time.Millisecond,
		Max:    time.Second,
		Factor: 2,
	}

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		_ = s.listener.SetDeadline(time.Now().Add(s.config.AcceptPoll))
		conn, err := s.listener.Accept()
		if err != nil {
			if isTimeout(err) {
				retry.Reset()
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.config.Logger.Warnf("accept error: %v", err)
			time.Sleep(retry.Duration())
			continue
		}

		retry.Reset()
		s.handleAccepted(conn)
	}
}

// handleAccepted applies the per-socket defaults, wraps the connection and
// invokes the callback. Callback panics are contained so they cannot take
// down the accept loop.
func (s *Server) handleAccepted(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := applyDefaultSocketOptions(tcpConn); err != nil {
			s.config.Logger.Warnf("setting socket options on %v: %v", conn.RemoteAddr(), err)
		}

		if s.config.KeepAlivePeriod > 0 {
			_ = tcpConn.SetKeepAlive(true)
			_ = tcpConn.SetKeepAlivePeriod(s.config.KeepAlivePeriod)
		} else {
			_ = tcpConn.SetKeepAlive(false)
		}
	}

	client := newClient(conn, s.config.Client)

	defer func() {
		if r := recover(); r != nil {
			s.config.Logger.Errorf("connect callback panicked: %v", r)
			_ = client.Close()
		}
	}()

	s.callback(client)
}
