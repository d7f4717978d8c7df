package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strings"
	"sync"

	"rudpchat/internal/pkg/chat"
	"rudpchat/internal/pkg/log"
	"rudpchat/internal/pkg/transport"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// maxInitialSeq bounds the random initial sequence number.
const maxInitialSeq = 100000

// Client implements the chat client.
type Client struct {
	serverAddr string
	server     net.Addr
	username   string
	uuid       uuid.UUID

	conn *transport.Conn
	seq  uint32

	outMu sync.Mutex
	out   io.Writer
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerAddr sets the server address to send to.
func WithServerAddr(host string, port uint16) Cfg {
	return func(c *Client) error {
		c.serverAddr = net.JoinHostPort(host, fmt.Sprint(port))
		return nil
	}
}

// WithUsername sets the name the client joins with.
func WithUsername(name string) Cfg {
	return func(c *Client) error {
		c.username = name
		return nil
	}
}

// WithConn sets the transport used to talk to the server.
func WithConn(conn *transport.Conn) Cfg {
	return func(c *Client) error {
		c.conn = conn
		return nil
	}
}

// WithOutput sets where server messages and prompts are written.
func WithOutput(w io.Writer) Cfg {
	return func(c *Client) error {
		c.out = w
		return nil
	}
}

// WithInitialSequence overrides the random initial sequence number.
func WithInitialSequence(seq uint32) Cfg {
	return func(c *Client) error {
		c.seq = seq
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	if client.username == "" {
		return nil, ErrMissingUsername
	}
	if client.conn == nil {
		return nil, errors.New("client requires a connection")
	}
	server, err := net.ResolveUDPAddr("udp", client.serverAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve server address %s failed", client.serverAddr)
	}
	client.server = server
	if client.out == nil {
		client.out = io.Discard
	}
	if client.seq == 0 {
		client.seq = uint32(rand.Intn(maxInitialSeq) + 1) // nolint: gosec // sequence seeds need no security
	}
	client.uuid = uuid.New()
	return client, nil
}

func (c *Client) fields() logrus.Fields {
	return logrus.Fields{
		"uuid":     c.uuid.String(),
		"username": c.username,
		"server":   c.server.String(),
	}
}

func (c *Client) println(a ...interface{}) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.out, a...)
}

func (c *Client) print(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprint(c.out, s)
}

// send reliably delivers msg to the server and advances the outbound sequence number.
func (c *Client) send(ctx context.Context, msg chat.Message) error {
	next, err := c.conn.Send(ctx, msg.Encode(), c.server, c.seq)
	c.seq = next
	if err != nil {
		return err
	}
	logger.WithFields(c.fields()).WithFields(log.MessageToFields(msg)).Debug("sent message")
	return nil
}

// handleMessage renders one message from the server. Error responses end the session.
func (c *Client) handleMessage(msg chat.Message) error {
	switch msg.Command {
	case chat.ResponseUsersList:
		c.println("list: " + strings.Join(msg.Users, " "))
	case chat.ForwardMessage:
		c.println(fmt.Sprintf("msg: %s: %s", msg.Sender, msg.Text))
	case chat.UsernameUnavailable:
		c.println("disconnected: username not available")
		return ErrUsernameUnavailable
	case chat.ServerFull:
		c.println("disconnected: server full")
		return ErrServerFull
	case chat.UnknownMessage:
		c.println("disconnected: server received an unknown command")
		return ErrUnknownMessage
	default:
		logger.WithFields(c.fields()).WithFields(log.MessageToFields(msg)).Warn("ignored unexpected message")
	}
	return nil
}

// receive renders messages from the server until an error response arrives or ctx is done.
func (c *Client) receive(ctx context.Context) error {
	for {
		in, err := c.conn.Receive(ctx)
		if err != nil {
			return errors.Wrap(err, "receive message failed")
		}
		msg, err := chat.Parse(string(in.Body))
		if err != nil {
			logger.WithFields(c.fields()).WithError(err).Warn("dropped malformed message")
			continue
		}
		logger.WithFields(c.fields()).WithFields(log.MessageToFields(msg)).Debug("received message")
		if err := c.handleMessage(msg); err != nil {
			return err
		}
	}
}

// handleInput executes one line typed by the user.
func (c *Client) handleInput(ctx context.Context, line string) error {
	in, err := chat.ParseInput(line)
	if err != nil {
		c.println(chat.ErrIncorrectInput.Error())
		return nil
	}
	if in.Action == chat.ActionHelp {
		c.print(chat.HelpText)
		return nil
	}
	msg, _ := in.Message(c.username)
	if err := c.send(ctx, msg); err != nil {
		return errors.Wrapf(err, "send %s failed", msg.Command)
	}
	if in.Action == chat.ActionQuit {
		c.println("quitting")
		return errQuit
	}
	return nil
}

// interact joins the server and then executes user input until the user quits.
func (c *Client) interact(ctx context.Context, lines <-chan string) error {
	if err := c.send(ctx, chat.NewJoin(c.username)); err != nil {
		return errors.Wrap(err, "send join failed")
	}
	logger.WithFields(c.fields()).Info("joined")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// end of input behaves like quit
				line = string(chat.ActionQuit)
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := c.handleInput(ctx, line); err != nil {
				return err
			}
		}
	}
}

// readLines feeds input lines to a channel until input ends or ctx is done.
func readLines(ctx context.Context, input io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// Run joins the server and runs the chat session, reading user commands from input.
// It returns nil when the user quits and one of ErrUsernameUnavailable, ErrServerFull or
// ErrUnknownMessage when the server ends the session.
func (c *Client) Run(ctx context.Context, input io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, input)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.receive(gctx)
	})
	g.Go(func() error {
		return c.interact(gctx, lines)
	})
	err := g.Wait()
	switch {
	case errors.Is(err, errQuit):
		logger.WithFields(c.fields()).Info("client quit")
		return nil
	case errors.Is(err, ErrUsernameUnavailable), errors.Is(err, ErrServerFull), errors.Is(err, ErrUnknownMessage):
		return err
	case ctx.Err() != nil:
		return nil
	}
	return errors.Wrap(err, "run client failed")
}
