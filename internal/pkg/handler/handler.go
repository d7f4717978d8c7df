// Package handler executes chat commands received by the server.
package handler

import (
	"context"
	"math/rand"
	"net"

	"rudpchat/internal/pkg/chat"
	"rudpchat/internal/pkg/log"
	"rudpchat/internal/pkg/session"
	"rudpchat/internal/pkg/transport"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Sender reliably delivers a message to a peer, starting at seq, and returns the
// sequence number that follows it.
type Sender interface {
	Send(ctx context.Context, msg []byte, dest net.Addr, seq uint32) (uint32, error)
}

// Handler applies inbound messages to the session table and answers or routes them.
// It is driven by a single goroutine; the sequence table it keeps is not shared.
type Handler struct {
	store  session.Store
	sender Sender
	seqs   session.Sequences
}

// HandlerCfg is configures a handler.
type HandlerCfg func(*Handler) error

// WithSessionStore sets the session store.
func WithSessionStore(store session.Store) HandlerCfg {
	return func(h *Handler) error {
		h.store = store
		return nil
	}
}

// WithSender sets the transport used for replies and forwarded messages.
func WithSender(sender Sender) HandlerCfg {
	return func(h *Handler) error {
		h.sender = sender
		return nil
	}
}

// NewHandler creates a new handler.
func NewHandler(cfgs ...HandlerCfg) (*Handler, error) {
	h := &Handler{
		seqs: session.Sequences{},
	}
	for _, cfg := range cfgs {
		if err := cfg(h); err != nil {
			return nil, errors.Wrap(err, "apply handler cfg failed")
		}
	}
	if h.store == nil {
		h.store = session.NewMemoryStore()
	}
	if h.sender == nil {
		return nil, errors.New("handler requires a sender")
	}
	return h, nil
}

// Handle executes one complete message received from in.Addr.
func (h *Handler) Handle(ctx context.Context, in transport.Message) error {
	// the first message from a peer seeds the sequence we answer it with
	h.seqs.Next(in.Addr, in.NextSeq)

	msg, err := chat.Parse(string(in.Body))
	if err != nil {
		logger.WithError(err).WithField(log.AddrField(in.Addr)).Debug("rejected message")
		return h.unknown(ctx, in.Addr)
	}
	logger.WithFields(log.MessageToFields(msg)).WithField(log.AddrField(in.Addr)).Debug("handling message")

	switch msg.Command {
	case chat.Join:
		return h.join(ctx, in.Addr, msg.Username)
	case chat.Disconnect:
		return h.disconnect(in.Addr, msg.Username)
	case chat.RequestUsersList:
		return h.usersList(ctx, in.Addr)
	case chat.SendMessage:
		return h.sendMessage(ctx, in.Addr, msg)
	}
	// server responses are not valid requests
	return h.unknown(ctx, in.Addr)
}

func (h *Handler) join(ctx context.Context, addr net.Addr, username string) error {
	if active, err := h.store.ByAddr(addr); err == nil {
		if active.Username != username {
			return h.unknown(ctx, addr)
		}
		// the active session stays; only the repeated join is refused
		logger.WithField("username", username).WithField("session", active.ID.String()).Info("disconnected: username not available")
		if err := h.send(ctx, addr, chat.NewError(chat.UsernameUnavailable)); err != nil {
			return errors.Wrapf(err, "send %s failed", chat.UsernameUnavailable)
		}
		return nil
	}
	sess, err := h.store.New(username, addr)
	switch {
	case errors.Is(err, session.ErrStoreFull):
		logger.WithField("username", username).Info("disconnected: server full")
		return h.reject(ctx, addr, chat.ServerFull)
	case errors.Is(err, session.ErrSessionAlreadyExists):
		logger.WithField("username", username).Info("disconnected: username not available")
		return h.reject(ctx, addr, chat.UsernameUnavailable)
	case err != nil:
		return errors.Wrap(err, "new session failed")
	}
	logger.WithField("session", sess.ID.String()).Infof("join: %s", username)
	return nil
}

func (h *Handler) disconnect(addr net.Addr, username string) error {
	sess, err := h.store.ByAddr(addr)
	if err != nil {
		logger.WithField(log.AddrField(addr)).Debug("dropped disconnect from unknown address")
		return nil
	}
	if sess.Username != username {
		logger.WithFields(logrus.Fields{
			"username": sess.Username,
			"claimed":  username,
		}).Warn("disconnect names a different user")
	}
	if err := h.store.Remove(sess.Username); err != nil {
		return errors.Wrap(err, "remove session failed")
	}
	h.seqs.Forget(addr)
	logger.WithField("session", sess.ID.String()).Infof("disconnected: %s", sess.Username)
	return nil
}

func (h *Handler) usersList(ctx context.Context, addr net.Addr) error {
	sess, err := h.store.ByAddr(addr)
	if err != nil {
		logger.WithField(log.AddrField(addr)).Debug("dropped users list request from unknown address")
		return nil
	}
	if err := h.send(ctx, addr, chat.NewResponseUsersList(h.store.Usernames())); err != nil {
		return errors.Wrap(err, "send users list failed")
	}
	logger.Infof("request_users_list: %s", sess.Username)
	return nil
}

func (h *Handler) sendMessage(ctx context.Context, addr net.Addr, msg chat.Message) error {
	sender, err := h.store.ByAddr(addr)
	if err != nil {
		logger.WithField(log.AddrField(addr)).Debug("dropped chat message from unknown address")
		return nil
	}
	logger.Infof("msg: %s", sender.Username)

	forward := chat.NewForwardMessage(sender.Username, msg.Text)
	for _, name := range msg.Recipients {
		recipient, err := h.store.Get(name)
		if err != nil {
			logger.Infof("msg: %s to non-existent user %s", sender.Username, name)
			continue
		}
		if err := h.send(ctx, recipient.Addr, forward); err != nil {
			if fatal(ctx, err) {
				return errors.Wrapf(err, "forward message to %s failed", name)
			}
			logger.WithError(err).WithField("recipient", name).Warn("forward message failed")
		}
	}
	return nil
}

// unknown answers a protocol violation. A peer with a session is told and removed;
// a peer without one is ignored.
func (h *Handler) unknown(ctx context.Context, addr net.Addr) error {
	sess, err := h.store.ByAddr(addr)
	if err != nil {
		logger.WithField(log.AddrField(addr)).Debug("dropped unknown command from unknown address")
		return nil
	}
	if err := h.store.Remove(sess.Username); err != nil {
		return errors.Wrap(err, "remove session failed")
	}
	logger.Infof("disconnected: %s sent unknown command", sess.Username)
	return h.reject(ctx, addr, chat.UnknownMessage)
}

// reject sends a terminal error response; the peer is expected to go away.
func (h *Handler) reject(ctx context.Context, addr net.Addr, c chat.Command) error {
	defer h.seqs.Forget(addr)
	if err := h.send(ctx, addr, chat.NewError(c)); err != nil {
		return errors.Wrapf(err, "send %s failed", c)
	}
	return nil
}

func (h *Handler) send(ctx context.Context, addr net.Addr, msg chat.Message) error {
	seq := h.seqs.Next(addr, uint32(rand.Intn(100000)+1)) // nolint: gosec // sequence seeds need no security
	next, err := h.sender.Send(ctx, msg.Encode(), addr, seq)
	h.seqs.Advance(addr, next)
	return err
}

// Run handles messages from in, in order, until in is closed or ctx is done.
func (h *Handler) Run(ctx context.Context, in <-chan transport.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			if err := h.Handle(ctx, msg); err != nil {
				if fatal(ctx, err) {
					return errors.Wrap(err, "handle message failed")
				}
				logger.WithError(err).WithField(log.AddrField(msg.Addr)).Warn("handle message failed")
			}
		}
	}
}

// fatal reports whether err means the handler can no longer make progress.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, transport.ErrClosed)
}
