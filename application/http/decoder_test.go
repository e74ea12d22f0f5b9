package http

import (
	"testing"
	"time"

	iolib "httpstack/lib/io"
	"httpstack/transport/pipe"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
)

type RequestDecoderTestSuite struct {
	suite.Suite
}

func TestRequestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(RequestDecoderTestSuite))
}

// decoderOver builds a decoder reading from an in-memory conn, returning
// the peer side for the test to write into.
func (s *RequestDecoderTestSuite) decoderOver(
	clk clock.Clock, opts DecodeOptions,
) (*RequestDecoder, *pipe.Pipe) {
	server, client := pipe.NewPair("server", "client", clk)
	d := NewRequestDecoder(iolib.NewUntilReader(server), server, clk, opts)
	return d, client
}

func (s *RequestDecoderTestSuite) TestDecodeSimple() {
	d, client := s.decoderOver(clock.New(), DefaultDecodeOptions)

	_, err := client.Write([]byte("GET /users HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	s.Require().NoError(err)

	var req Request
	s.Require().NoError(d.Decode(&req))

	s.Equal("GET", req.Method)
	s.Equal("/users", req.Target)
	s.Equal(Version{1, 1}, req.Version)
	s.Equal([]Field{{"Host", "localhost"}}, req.Headers)
	s.Empty(req.Body)
}

func (s *RequestDecoderTestSuite) TestDecodeWithBody() {
	d, client := s.decoderOver(clock.New(), DefaultDecodeOptions)

	_, err := client.Write([]byte(
		"POST /items HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello",
	))
	s.Require().NoError(err)

	var req Request
	s.Require().NoError(d.Decode(&req))

	s.Equal("POST", req.Method)
	s.Equal([]byte("hello"), req.Body)
}

func (s *RequestDecoderTestSuite) TestDecodePipelined() {
	d, client := s.decoderOver(clock.New(), DefaultDecodeOptions)

	_, err := client.Write([]byte(
		"GET /a HTTP/1.1\r\n\r\nGET /b HTTP/1.1\r\n\r\n",
	))
	s.Require().NoError(err)

	var first, second Request
	s.Require().NoError(d.Decode(&first))
	s.Require().NoError(d.Decode(&second))

	s.Equal("/a", first.Target)
	s.Equal("/b", second.Target)
}

func (s *RequestDecoderTestSuite) TestDecodeMalformedContentLength() {
	d, client := s.decoderOver(clock.New(), DefaultDecodeOptions)

	_, err := client.Write([]byte(
		"POST / HTTP/1.1\r\nContent-Length: abc\r\n\r\n",
	))
	s.Require().NoError(err)

	var req Request
	s.ErrorIs(d.Decode(&req), ErrMalformedContentLength)
}

func (s *RequestDecoderTestSuite) TestDecodeBodyTimeoutKeepsPartial() {
	clk := clock.NewMock()
	d, client := s.decoderOver(clk, DecodeOptions{BodyReadTimeout: 5 * time.Second})

	_, err := client.Write([]byte(
		"POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nhel",
	))
	s.Require().NoError(err)

	done := make(chan Request, 1)
	go func() {
		var req Request
		s.NoError(d.Decode(&req))
		done <- req
	}()

	// Let the decode reach the body read before firing the deadline.
	time.Sleep(50 * time.Millisecond)
	clk.Add(6 * time.Second)

	req := <-done
	s.Equal([]byte("hel"), req.Body)
}

func (s *RequestDecoderTestSuite) TestDecodeBodyShortOnClose() {
	d, client := s.decoderOver(clock.New(), DefaultDecodeOptions)

	_, err := client.Write([]byte(
		"PUT / HTTP/1.1\r\nContent-Length: 10\r\n\r\nhel",
	))
	s.Require().NoError(err)
	s.Require().NoError(client.Close())

	var req Request
	s.Require().NoError(d.Decode(&req))
	s.Equal([]byte("hel"), req.Body)
}

func (s *RequestDecoderTestSuite) TestDecodeEmptyConn() {
	d, client := s.decoderOver(clock.New(), DefaultDecodeOptions)
	s.Require().NoError(client.Close())

	var req Request
	s.Error(d.Decode(&req))
}
