package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"httpstack/application/http"
	"httpstack/application/http/routing"
	"httpstack/application/http/semantic"
	"httpstack/application/http2"
	"httpstack/application/websocket"
	iolib "httpstack/lib/io"
	"httpstack/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type conn struct {
	con transport.Conn
	r   *iolib.UntilReader

	registry *routing.Registry[Handler]
	clock    clock.Clock

	logger *slog.Logger

	opts Options
}

func (c *conn) start(ctx context.Context) {
	defer func() {
		c.logger.Debug("closing connection")
		if err := c.con.Close(); err != nil && !errors.Is(err, transport.ErrConnClosed) {
			c.logger.Error("error when closing connection", "error", err)
		}
	}()

	err := c.dispatch(ctx)

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		// no-op.
	case errors.Is(err, transport.ErrConnClosed), errors.Is(err, io.EOF):
		c.logger.Debug("peer closed connection")
	default:
		c.logger.Error("serving connection failed", "error", err)
	}
}

// dispatch reads the first header block and routes the connection to
// the protocol it opens with.
func (c *conn) dispatch(ctx context.Context) error {
	head, err := c.r.ReadUntil(http.HeadTerminator)
	if err != nil {
		if len(head) == 0 {
			return nil
		}
		return errors.Wrap(err, "reading first header block")
	}

	// The h2 preface contains the head terminator halfway through, so a
	// direct-preface connection shows up as this exact header block.
	if len(head) == 18 && bytes.Equal(head, http2.Preface[:18]) {
		return c.serveHTTP2(ctx, io.MultiReader(bytes.NewReader(head), c.r))
	}

	lowered := strings.ToLower(string(head))
	wantsUpgrade := strings.Contains(lowered, "connection:") &&
		strings.Contains(lowered, "upgrade")

	switch {
	case wantsUpgrade && strings.Contains(lowered, "upgrade: websocket"):
		return c.serveWebSocket(ctx, head)
	case wantsUpgrade && strings.Contains(lowered, "upgrade: h2c"):
		return c.serveH2C(ctx, head)
	default:
		return c.serveHTTP1(ctx, head)
	}
}

func (c *conn) serveHTTP2(ctx context.Context, r io.Reader) error {
	c.logger.Debug("serving http/2")
	h2 := http2.NewConn(c.con, r, c.logger)
	return h2.Serve(ctx)
}

// serveH2C completes the cleartext upgrade and hands the socket to the
// h2 connection loop. Without the HTTP2-Settings header the upgrade is
// refused and the request served as plain HTTP/1.1.
func (c *conn) serveH2C(ctx context.Context, head []byte) error {
	_, fields, err := http.ParseRequestHead(head)
	if err != nil {
		return c.serveHTTP1(ctx, head)
	}
	if http.LastFieldValue(fields, "HTTP2-Settings") == "" {
		return c.serveHTTP1(ctx, head)
	}

	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Connection: Upgrade\r\n" +
		"Upgrade: h2c\r\n\r\n"
	if _, err := iolib.WriteFull(c.con, []byte(response)); err != nil {
		return errors.Wrap(err, "writing upgrade response")
	}

	return c.serveHTTP2(ctx, c.r)
}

func (c *conn) serveWebSocket(ctx context.Context, head []byte) error {
	reqLine, fields, err := http.ParseRequestHead(head)
	if err != nil {
		return errors.Wrap(err, "parsing upgrade request")
	}

	raw := http.Request{RequestLine: reqLine, Headers: fields}
	req := semantic.RequestFrom(&raw)

	handler, params, ok := c.registry.Match(routing.MethodWebSocket, req.Path)
	if !ok {
		return c.writeResponse(semantic.NotFound(), false)
	}
	req.PathParams = params

	wsConn, err := websocket.Upgrade(c.con, c.r, req)
	if err != nil {
		if errors.Is(err, websocket.ErrHandshakeFailed) {
			// Not a valid upgrade after all; serve it as HTTP/1.1.
			return c.serveHTTP1(ctx, head)
		}
		return err
	}

	h, ok := handler.(WebSocketHandlerFunc)
	if !ok {
		c.logger.Error("route handler is not a websocket handler", "path", req.Path)
		return wsConn.Close(1011, "internal error")
	}

	c.logger.Debug("serving websocket", "path", req.Path)
	if err := invokeWebSocket(ctx, h, wsConn); err != nil {
		c.logger.Error("websocket handler failed", "error", err)
	}
	return wsConn.Close(websocket.CloseCodeNormal, "")
}

// serveHTTP1 runs the keep-alive request loop. head is the first,
// already-consumed header block.
func (c *conn) serveHTTP1(ctx context.Context, head []byte) error {
	dec := http.NewRequestDecoder(c.r, c.con, c.clock, c.opts.Decode)

	for {
		var raw http.Request

		var err error
		if head != nil {
			err = dec.DecodeHead(head, &raw)
			head = nil
		} else {
			err = dec.Decode(&raw)
		}
		if err != nil {
			if errors.Is(err, transport.ErrConnClosed) || errors.Is(err, io.EOF) {
				return nil
			}
			// Best-effort error response before giving up on the stream.
			res := semantic.InternalServerError(err.Error())
			_ = c.writeResponse(res, false)
			return errors.Wrap(err, "decoding request")
		}

		keepAlive := raw.KeepAlive()

		res := c.handleRequest(ctx, &raw)
		if err := c.writeResponse(res, keepAlive); err != nil {
			return errors.Wrap(err, "writing response")
		}

		if !keepAlive {
			return nil
		}
	}
}

func (c *conn) handleRequest(ctx context.Context, raw *http.Request) *semantic.Response {
	req := semantic.RequestFrom(raw)

	c.logger.Debug("handling request", "method", req.Method, "path", req.Path)

	// HEAD shares GET's routes; the body is dropped after handling.
	method := req.Method
	isHead := method == "HEAD"
	if isHead {
		method = "GET"
	}

	handler, params, ok := c.registry.Match(method, req.Path)
	if !ok {
		return semantic.NotFound()
	}

	req.Method = method
	req.PathParams = params

	h, ok := handler.(HandlerFunc)
	if !ok {
		return semantic.InternalServerError("route is not a request handler")
	}

	res, err := invoke(ctx, h, req)
	if err != nil {
		return semantic.InternalServerError(err.Error())
	}
	if res == nil {
		res = semantic.NewResponse("", 204)
	}

	if isHead {
		res.DiscardBody()
	}
	return res
}

func (c *conn) writeResponse(res *semantic.Response, keepAlive bool) error {
	if res.Headers == nil {
		res.Headers = semantic.NewHeaders()
	}
	if keepAlive {
		res.Headers.Set("Connection", "keep-alive")
	} else {
		res.Headers.Set("Connection", "close")
	}

	enc := http.NewResponseEncoder(c.con)
	return enc.Encode(res.Raw())
}
