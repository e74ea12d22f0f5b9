// Package server accepts connections and dispatches each one to the
// protocol it speaks: HTTP/1.1, HTTP/2 or websocket.
package server

import (
	"context"
	"log/slog"
	"sync"

	"httpstack/application/http/routing"
	iolib "httpstack/lib/io"
	"httpstack/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type Server struct {
	l transport.ConnListener

	closeListener func()
	wg            sync.WaitGroup

	logger *slog.Logger
	opts   Options

	registry *routing.Registry[Handler]
	clock    clock.Clock
}

func New(
	l transport.ConnListener,
	logger *slog.Logger,
	clock clock.Clock,
	registry *routing.Registry[Handler],
	opts Options,
) *Server {
	return &Server{
		l:        l,
		logger:   logger,
		opts:     opts,
		registry: registry,
		clock:    clock,
	}
}

func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.closeListener = cancel
	go func() {
		connCtx, connCancel := context.WithCancel(context.Background())
		for {
			conn, err := s.acceptConn(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Error(
						"unexpected error when accepting connection",
						"error", err.Error(),
					)
				}
				connCancel()
				return
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				conn.start(connCtx)
			}()
		}
	}()
}

func (s *Server) acceptConn(ctx context.Context) (*conn, error) {
	con, err := s.l.Accept(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listening for connection")
	}

	conn := &conn{
		con:      con,
		r:        iolib.NewUntilReader(con),
		registry: s.registry,
		opts:     s.opts,
		logger:   s.logger.With("conn", con.RemoteAddr()),
		clock:    s.clock,
	}

	return conn, nil
}

func (s *Server) Close() error {
	s.closeListener()
	s.wg.Wait()
	return nil
}
