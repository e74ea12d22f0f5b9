package websocket

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"

	"httpstack/application/http/semantic"
	iolib "httpstack/lib/io"
	"httpstack/transport"

	"github.com/pkg/errors"
)

// guid is the fixed key suffix from RFC 6455.
const guid = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var ErrHandshakeFailed = errors.New("websocket handshake failed")

// AcceptKey derives the Sec-WebSocket-Accept value for a client key.
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + guid))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Upgrade validates the upgrade request and completes the handshake,
// returning the established connection. The caller keeps ownership of
// con on error.
func Upgrade(con transport.Conn, r *iolib.UntilReader, req *semantic.Request) (*Conn, error) {
	if upgrade, _ := req.Headers.Get("Upgrade"); !strings.EqualFold(upgrade, "websocket") {
		return nil, errors.Wrap(ErrHandshakeFailed, "missing upgrade header")
	}
	if connection, _ := req.Headers.Get("Connection"); !strings.Contains(strings.ToLower(connection), "upgrade") {
		return nil, errors.Wrap(ErrHandshakeFailed, "missing connection header")
	}
	if version, _ := req.Headers.Get("Sec-WebSocket-Version"); version != "13" {
		return nil, errors.Wrap(ErrHandshakeFailed, "unsupported version")
	}
	key, ok := req.Headers.Get("Sec-WebSocket-Key")
	if !ok || key == "" {
		return nil, errors.Wrap(ErrHandshakeFailed, "missing key")
	}

	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + AcceptKey(key) + "\r\n\r\n"

	if _, err := iolib.WriteFull(con, []byte(response)); err != nil {
		return nil, errors.Wrap(err, "writing handshake response")
	}

	return &Conn{
		con:        con,
		r:          r,
		Path:       req.Path,
		Headers:    req.Headers,
		PathParams: req.PathParams,
	}, nil
}
