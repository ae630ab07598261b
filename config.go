package sockets

import "time"

const (
	// DefaultReceiveTimeout is applied to receives posted without an
	// explicit timeout.
	DefaultReceiveTimeout = 1 * time.Second

	// DefaultReadinessTick bounds each readiness poll before a read.
	DefaultReadinessTick = 10 * time.Millisecond

	// DefaultAcceptPoll bounds each readiness poll on the listen socket.
	DefaultAcceptPoll = 100 * time.Millisecond
)

// ClientConfig contains configuration options for a connection endpoint.
type ClientConfig struct {
	// ReceiveTimeout is the deadline applied to receives posted without an
	// explicit timeout. Default is 1s.
	ReceiveTimeout time.Duration
	// ReadinessTick is the bounded wait of a single readiness poll before
	// each read. Default is 10ms.
	ReadinessTick time.Duration
	// Logger receives connection events. Default is NoopLogger.
	Logger Logger
}

func (c *ClientConfig) applyDefaults() {
	if c.ReceiveTimeout == 0 {
		c.ReceiveTimeout = DefaultReceiveTimeout
	}

	if c.ReadinessTick == 0 {
		c.ReadinessTick = DefaultReadinessTick
	}

	if c.Logger == nil {
		c.Logger = &NoopLogger{}
	}
}

// ServerConfig contains configuration options for a listening endpoint.
type ServerConfig struct {
	// AcceptPoll is the bounded wait of a single readiness poll on the
	// listen socket. Default is 100ms.
	AcceptPoll time.Duration
	// KeepAlivePeriod enables TCP keepalive on accepted connections when
	// positive. Default is disabled.
	KeepAlivePeriod time.Duration
	// Client configures the endpoints constructed for accepted connections.
	Client *ClientConfig
	// Logger receives accept-loop events. Default is NoopLogger.
	Logger Logger
}

func (c *ServerConfig) applyDefaults() {
	if c.AcceptPoll == 0 {
		c.AcceptPoll = DefaultAcceptPoll
	}

	if c.Logger == nil {
		c.Logger = &NoopLogger{}
	}
}
