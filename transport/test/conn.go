// Package test holds a reusable conformance suite for [transport.Conn]
// implementations.
package test

import (
	"sync"
	"time"

	"httpstack/transport"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type ConnTestSuite struct {
	suite.Suite
	C1, C2 transport.Conn
	Clock  clock.Clock

	done  chan struct{}
	timer *time.Timer
}

func (s *ConnTestSuite) SetupTest() {
	s.done = make(chan struct{})
	s.Clock = clock.New()

	s.timer = time.AfterFunc(time.Second, func() {
		select {
		case <-s.done:
		default:
			s.FailNow("timeout exceeded")
		}
	})
}

func (s *ConnTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	s.NoError(s.C1.Close())
	s.NoError(s.C2.Close())
	close(s.done)
	s.timer.Stop()
}

func (s *ConnTestSuite) TestReadWrite() {
	data := []byte("Hello, World!")

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(2)

	go func() {
		defer wg.Done()
		n, err := s.C1.Write(data)
		s.Require().NoError(err)
		s.Equal(len(data), n)
	}()
	go func() {
		defer wg.Done()
		buf := make([]byte, len(data))

		n, err := s.C2.Read(buf)
		s.Require().NoError(err)
		s.Equal(data[:n], buf[:n])
	}()
}

func (s *ConnTestSuite) TestConcurrentReadWrite() {
	// Both ends write and read at the same time, the full-duplex shape
	// protocol connections drive.
	const rounds = 200
	data := []byte("full-duplex")
	total := rounds * len(data)

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(4)

	write := func(c transport.Conn) {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := c.Write(data)
			s.Require().NoError(err)
		}
	}
	read := func(c transport.Conn) {
		defer wg.Done()
		buf := make([]byte, 512)
		got := 0
		for got < total {
			n, err := c.Read(buf)
			s.Require().NoError(err)
			got += n
		}
		s.Equal(total, got)
	}

	go write(s.C1)
	go write(s.C2)
	go read(s.C1)
	go read(s.C2)
}

func (s *ConnTestSuite) TestReadAfterClose() {
	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 10)
		_, err := s.C2.Read(buf)
		s.ErrorIs(err, transport.ErrConnClosed)
	}()

	time.Sleep(50 * time.Millisecond)
	s.Require().NoError(s.C1.Close())
}

func (s *ConnTestSuite) TestDrainBeforeClose() {
	data := []byte("bye")

	_, err := s.C1.Write(data)
	s.Require().NoError(err)
	s.Require().NoError(s.C1.Close())

	// Buffered data survives the peer's close.
	buf := make([]byte, len(data))
	n, err := s.C2.Read(buf)
	s.Require().NoError(err)
	s.Equal(data, buf[:n])

	_, err = s.C2.Read(buf)
	s.ErrorIs(err, transport.ErrConnClosed)
}

func (s *ConnTestSuite) TestReadDeadLine() {
	s.C1.SetReadDeadLine(s.Clock.Now().Add(-time.Second))

	b := make([]byte, 1)
	n, err := s.C1.Read(b)
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)
}

func (s *ConnTestSuite) TestAddr() {
	s.Equal(s.C1.LocalAddr(), s.C2.RemoteAddr())
	s.Equal(s.C2.LocalAddr(), s.C1.RemoteAddr())
}
