// Package pipe provides an in-memory [transport.Conn] pair, used as the
// connection fixture in protocol tests. Writes are buffered and never
// block; reads block until data arrives, the pipe closes, or the read
// deadline fires.
package pipe

import (
	"bytes"
	"sync"
	"time"

	"httpstack/transport"

	"github.com/benbjohnson/clock"
)

type Addr struct{ Name string }

var _ transport.Addr = Addr{}

func (a Addr) String() string { return a.Name }

type Pipe struct {
	addr Addr

	// mu is shared with the counterpart, so every state access across
	// the pair takes a single lock.
	mu     *sync.Mutex
	buf    bytes.Buffer // data waiting to be read by this side.
	notify chan struct{}
	closed bool

	rdeadLine *deadLine
	wdeadLine *deadLine

	counterpart *Pipe
}

var _ transport.Conn = (*Pipe)(nil)

// NewPair creates two connected pipes.
func NewPair(name1, name2 string, clk clock.Clock) (c1, c2 *Pipe) {
	mu := new(sync.Mutex)
	c1 = &Pipe{
		addr:      Addr{Name: name1},
		mu:        mu,
		notify:    make(chan struct{}),
		rdeadLine: newDeadLine(clk),
		wdeadLine: newDeadLine(clk),
	}
	c2 = &Pipe{
		addr:      Addr{Name: name2},
		mu:        mu,
		notify:    make(chan struct{}),
		rdeadLine: newDeadLine(clk),
		wdeadLine: newDeadLine(clk),
	}
	c1.counterpart, c2.counterpart = c2, c1
	return
}

func (p *Pipe) LocalAddr() transport.Addr  { return p.addr }
func (p *Pipe) RemoteAddr() transport.Addr { return p.counterpart.addr }

func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.wake()
	// Readers blocked on the other end wait on their own notify channel.
	p.counterpart.wake()
	return nil
}

func (p *Pipe) Read(b []byte) (n int, err error) {
	for {
		p.mu.Lock()
		if p.buf.Len() > 0 {
			n, _ = p.buf.Read(b)
			p.mu.Unlock()
			return n, nil
		}
		if p.closed || p.counterpart.closed {
			p.mu.Unlock()
			return 0, transport.ErrConnClosed
		}
		wait := p.notify
		p.mu.Unlock()

		select {
		case <-wait:
		case <-p.rdeadLine.wait():
			return 0, transport.ErrDeadLineExceeded
		}
	}
}

func (p *Pipe) Write(b []byte) (n int, err error) {
	select {
	case <-p.wdeadLine.wait():
		return 0, transport.ErrDeadLineExceeded
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.counterpart.closed {
		return 0, transport.ErrConnClosed
	}

	p.counterpart.buf.Write(b)
	p.counterpart.wake()
	return len(b), nil
}

// wake must be called with mu held.
func (p *Pipe) wake() {
	close(p.notify)
	p.notify = make(chan struct{})
}

func (p *Pipe) SetReadDeadLine(t time.Time)  { p.rdeadLine.set(t) }
func (p *Pipe) SetWriteDeadLine(t time.Time) { p.wdeadLine.set(t) }

type deadLine struct {
	clk clock.Clock

	m     sync.Mutex
	t     *clock.Timer
	fired chan struct{}
}

func newDeadLine(clk clock.Clock) *deadLine {
	return &deadLine{clk: clk, fired: make(chan struct{})}
}

func (d *deadLine) set(t time.Time) {
	d.m.Lock()
	defer d.m.Unlock()

	if d.t != nil {
		d.t.Stop()
		d.t = nil
	}

	select {
	case <-d.fired:
		d.fired = make(chan struct{})
	default:
	}

	if t.IsZero() {
		// Zero time clears the deadline.
		return
	}

	fired := d.fired
	d.t = d.clk.AfterFunc(d.clk.Until(t), func() {
		close(fired)
	})
}

func (d *deadLine) wait() <-chan struct{} {
	d.m.Lock()
	defer d.m.Unlock()
	return d.fired
}
