package websocket

import (
	"strings"
	"testing"

	"httpstack/application/http"
	"httpstack/application/http/semantic"
	iolib "httpstack/lib/io"
	"httpstack/transport/pipe"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// RFC 6455 section 1.3 example.
func TestAcceptKey(t *testing.T) {
	key := "dGhlIHNhbXBsZSBub25jZQ=="
	assert.Equal(t, "s3pAPLLRXJHijGbrB+c1wZJSgqg=", AcceptKey(key))
}

type HandshakeTestSuite struct {
	suite.Suite

	server *pipe.Pipe
	client *pipe.Pipe
}

func TestHandshakeTestSuite(t *testing.T) {
	suite.Run(t, new(HandshakeTestSuite))
}

func (s *HandshakeTestSuite) SetupTest() {
	s.server, s.client = pipe.NewPair("server", "client", clock.New())
}

func (s *HandshakeTestSuite) TearDownTest() {
	s.server.Close()
	s.client.Close()
}

func upgradeRequest(mutate func(h *semantic.Headers)) *semantic.Request {
	req := semantic.RequestFrom(&http.Request{
		RequestLine: http.RequestLine{
			Method: "GET", Target: "/chat", Version: http.Version{1, 1},
		},
	})
	req.Headers.Set("Upgrade", "websocket")
	req.Headers.Set("Connection", "Upgrade")
	req.Headers.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Headers.Set("Sec-WebSocket-Version", "13")
	if mutate != nil {
		mutate(req.Headers)
	}
	return req
}

func (s *HandshakeTestSuite) TestUpgrade() {
	req := upgradeRequest(nil)

	conn, err := Upgrade(s.server, iolib.NewUntilReader(s.server), req)
	s.Require().NoError(err)
	s.Equal("/chat", conn.Path)

	buf := make([]byte, 1024)
	n, err := s.client.Read(buf)
	s.Require().NoError(err)

	response := string(buf[:n])
	s.True(strings.HasPrefix(response, "HTTP/1.1 101 Switching Protocols\r\n"))
	s.Contains(response, "Sec-WebSocket-Accept: s3pAPLLRXJHijGbrB+c1wZJSgqg=\r\n")
	s.True(strings.HasSuffix(response, "\r\n\r\n"))
}

func (s *HandshakeTestSuite) TestUpgradeRejected() {
	testcases := []struct {
		desc   string
		mutate func(h *semantic.Headers)
	}{
		{
			desc:   "missing upgrade",
			mutate: func(h *semantic.Headers) { h.Del("Upgrade") },
		},
		{
			desc:   "missing connection",
			mutate: func(h *semantic.Headers) { h.Del("Connection") },
		},
		{
			desc:   "missing key",
			mutate: func(h *semantic.Headers) { h.Del("Sec-WebSocket-Key") },
		},
		{
			desc:   "wrong version",
			mutate: func(h *semantic.Headers) { h.Set("Sec-WebSocket-Version", "8") },
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			req := upgradeRequest(tc.mutate)
			_, err := Upgrade(s.server, iolib.NewUntilReader(s.server), req)
			s.ErrorIs(err, ErrHandshakeFailed)
		})
	}
}
