package server

import (
	"context"

	"httpstack/application/http/semantic"
	"httpstack/application/websocket"

	"github.com/pkg/errors"
)

// HandlerFunc serves one request. A returned error is rendered as a 500
// with the error message in the body.
type HandlerFunc func(ctx context.Context, req *semantic.Request) (*semantic.Response, error)

// WebSocketHandlerFunc owns an upgraded connection until it returns.
type WebSocketHandlerFunc func(ctx context.Context, conn *websocket.Conn) error

// Handler is either a [HandlerFunc] or a [WebSocketHandlerFunc],
// depending on the method the route was registered under.
type Handler any

// invoke runs h, converting a panic into an error so one bad handler
// cannot take the whole connection loop down.
func invoke(ctx context.Context, h HandlerFunc, req *semantic.Request) (res *semantic.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panicked: %v", r)
		}
	}()

	return h(ctx, req)
}

func invokeWebSocket(ctx context.Context, h WebSocketHandlerFunc, conn *websocket.Conn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panicked: %v", r)
		}
	}()

	return h(ctx, conn)
}
