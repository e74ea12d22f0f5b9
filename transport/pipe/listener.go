package pipe

import (
	"context"
	"sync"

	"httpstack/transport"

	"github.com/benbjohnson/clock"
)

// Listener hands out in-memory connections. Dial creates a connected pair;
// the server half is queued for Accept.
type Listener struct {
	clk clock.Clock

	incoming chan *Pipe

	closed chan struct{}
	once   sync.Once
}

var _ transport.ConnListener = (*Listener)(nil)

func NewListener(clk clock.Clock) *Listener {
	return &Listener{
		clk:      clk,
		incoming: make(chan *Pipe),
		closed:   make(chan struct{}),
	}
}

// Dial connects to the listener and returns the client half.
func (l *Listener) Dial() (transport.Conn, error) {
	client, server := NewPair("client", "server", l.clk)
	select {
	case l.incoming <- server:
		return client, nil
	case <-l.closed:
		return nil, transport.ErrConnListenerClosed
	}
}

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnListenerClosed
	case con := <-l.incoming:
		return con, nil
	}
}

func (l *Listener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}
