package server

import (
	"context"

	"rudpchat/internal/pkg/handler"
	"rudpchat/internal/pkg/log"
	"rudpchat/internal/pkg/session"
	"rudpchat/internal/pkg/transport"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// DefaultQueueSize is the capacity of the queue between the receiver and the processor.
const DefaultQueueSize = 128

// Server routes chat messages between clients.
type Server struct {
	conn      *transport.Conn
	store     session.Store
	queueSize int
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithConn sets the transport the server receives and sends on.
func WithConn(conn *transport.Conn) Cfg {
	return func(s *Server) error {
		s.conn = conn
		return nil
	}
}

// WithSessionStore sets the session store for the server.
func WithSessionStore(store session.Store) Cfg {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// WithQueueSize sets the capacity of the message queue.
func WithQueueSize(n int) Cfg {
	return func(s *Server) error {
		if n <= 0 {
			return errors.New("queue size must be positive")
		}
		s.queueSize = n
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{
		queueSize: DefaultQueueSize,
	}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	if server.conn == nil {
		return nil, errors.New("server requires a connection")
	}
	if server.store == nil {
		server.store = session.NewMemoryStore()
	}
	return server, nil
}

// Run serves clients until ctx is done or the connection fails.
func (s *Server) Run(ctx context.Context) error {
	h, err := handler.NewHandler(
		handler.WithSessionStore(s.store),
		handler.WithSender(s.conn),
	)
	if err != nil {
		return errors.Wrap(err, "new handler failed")
	}
	logger.WithField("addr", s.conn.LocalAddr().String()).
		WithField("window", s.conn.WindowSize()).
		Info("server listening")

	queue := make(chan transport.Message, s.queueSize)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		return s.receive(gctx, queue)
	})
	g.Go(func() error {
		return h.Run(gctx, queue)
	})
	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("server stopped")
		return nil
	}
	return errors.Wrap(err, "serve failed")
}

// receive drains the socket and queues every completed message.
func (s *Server) receive(ctx context.Context, queue chan<- transport.Message) error {
	for {
		msg, err := s.conn.Receive(ctx)
		if err != nil {
			return errors.Wrap(err, "receive message failed")
		}
		logger.WithField(log.AddrField(msg.Addr)).WithField("len", len(msg.Body)).Debug("received message")
		select {
		case queue <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
