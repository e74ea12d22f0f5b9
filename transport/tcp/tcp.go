// Package tcp adapts the standard library's TCP sockets onto
// [transport.Conn] and [transport.ConnListener].
package tcp

import (
	"context"
	"io"
	"net"
	"time"

	"httpstack/transport"

	"github.com/pkg/errors"
)

type Addr struct{ addr net.Addr }

var _ transport.Addr = Addr{}

func (a Addr) String() string {
	if a.addr == nil {
		return ""
	}
	return a.addr.String()
}

type Listener struct {
	l net.Listener
}

var _ transport.ConnListener = (*Listener)(nil)

// Listen starts a TCP listener on addr (e.g. "127.0.0.1:8080").
func Listen(addr string) (*Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "listening")
	}
	return &Listener{l: l}, nil
}

// WrapListener adapts an existing [net.Listener] (e.g. a TLS listener
// produced after ALPN negotiation) into a [transport.ConnListener].
func WrapListener(l net.Listener) *Listener { return &Listener{l: l} }

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	type result struct {
		con net.Conn
		err error
	}
	signal := make(chan result, 1)
	go func() {
		con, err := l.l.Accept()
		signal <- result{con, err}
	}()

	select {
	case <-ctx.Done():
		// Accept stays pending until the listener is closed.
		// Close() unblocks it. A connection that raced in anyway has no
		// owner anymore, so reap it.
		go func() {
			if res := <-signal; res.err == nil {
				res.con.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-signal:
		if res.err != nil {
			if errors.Is(res.err, net.ErrClosed) {
				return nil, transport.ErrConnListenerClosed
			}
			return nil, errors.Wrap(res.err, "accepting connection")
		}
		return WrapConn(res.con), nil
	}
}

func (l *Listener) Close() error { return l.l.Close() }

func (l *Listener) Addr() transport.Addr { return Addr{addr: l.l.Addr()} }

type conn struct {
	con net.Conn
}

var _ transport.Conn = (*conn)(nil)

// WrapConn adapts a [net.Conn] into a [transport.Conn]. Net-level errors
// are mapped onto the transport sentinels so protocol code can match on
// [transport.ErrConnClosed] and [transport.ErrDeadLineExceeded].
func WrapConn(con net.Conn) transport.Conn { return &conn{con: con} }

func (c *conn) Read(p []byte) (n int, err error) {
	n, err = c.con.Read(p)
	return n, mapErr(err)
}

func (c *conn) Write(p []byte) (n int, err error) {
	n, err = c.con.Write(p)
	return n, mapErr(err)
}

func (c *conn) Close() error { return c.con.Close() }

func (c *conn) LocalAddr() transport.Addr  { return Addr{addr: c.con.LocalAddr()} }
func (c *conn) RemoteAddr() transport.Addr { return Addr{addr: c.con.RemoteAddr()} }

func (c *conn) SetReadDeadLine(t time.Time)  { c.con.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { c.con.SetWriteDeadline(t) }

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case err == io.EOF:
		return io.EOF
	case errors.Is(err, net.ErrClosed):
		return transport.ErrConnClosed
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return transport.ErrDeadLineExceeded
	}

	return err
}
