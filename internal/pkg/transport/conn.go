package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"rudpchat/internal/pkg/log"
	"rudpchat/internal/pkg/packet"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

const (
	// MaxChunkSize is the largest payload carried by one data packet.
	MaxChunkSize = 1400
	// DefaultRetransmitTimeout is how long Send waits for an ack before retransmitting.
	DefaultRetransmitTimeout = 500 * time.Millisecond
	// DefaultMaxRetries bounds the retransmissions of a single packet.
	DefaultMaxRetries = 20
	// DefaultBufferTTL is how long an idle reassembly buffer survives.
	DefaultBufferTTL = 30 * time.Second
	// DefaultWindowSize is accepted for compatibility; delivery is always stop-and-wait.
	DefaultWindowSize = 3

	maxDatagramSize = 4096
	inboxSize       = 64
	ackQueueSize    = 8
)

// Message is a fully reassembled message.
type Message struct {
	Body []byte
	Addr net.Addr
	// NextSeq is the receiver's expected sequence number once the message completed.
	NextSeq uint32
}

type inbound struct {
	pkt  packet.Packet
	addr net.Addr
}

// Conn delivers messages reliably over a datagram socket.
//
// A single reader goroutine owns the socket reads. Acks are routed to the Send call
// waiting on the acking address; start, data and end packets are queued for Receive.
// An ack is therefore never seen by Receive and a data packet is never consumed by Send.
//
// Send may be called from any goroutine; sends to the same destination are serialized.
// Receive must only be called from one goroutine at a time.
type Conn struct {
	pc net.PacketConn

	timeout    time.Duration
	maxRetries int
	bufferTTL  time.Duration
	window     int
	now        func() time.Time

	inbox chan inbound

	mu      sync.Mutex
	waiters map[string]chan packet.Packet
	dests   map[string]*sync.Mutex

	reasm *Reassembler
	reap  *time.Ticker

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Cfg configures a Conn.
type Cfg func(*Conn) error

// WithRetransmitTimeout sets how long to wait for an ack before retransmitting.
func WithRetransmitTimeout(d time.Duration) Cfg {
	return func(c *Conn) error {
		if d <= 0 {
			return errors.New("retransmit timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithMaxRetries bounds the number of retransmissions of each packet.
// Zero retries forever.
func WithMaxRetries(n int) Cfg {
	return func(c *Conn) error {
		if n < 0 {
			return errors.New("max retries must not be negative")
		}
		c.maxRetries = n
		return nil
	}
}

// WithBufferTTL sets how long an idle reassembly buffer is kept. Zero disables eviction.
func WithBufferTTL(d time.Duration) Cfg {
	return func(c *Conn) error {
		if d < 0 {
			return errors.New("buffer ttl must not be negative")
		}
		c.bufferTTL = d
		return nil
	}
}

// WithWindowSize records the configured window size. Delivery stays stop-and-wait.
func WithWindowSize(n int) Cfg {
	return func(c *Conn) error {
		c.window = n
		return nil
	}
}

// WithClock overrides the clock used for buffer eviction.
func WithClock(now func() time.Time) Cfg {
	return func(c *Conn) error {
		c.now = now
		return nil
	}
}

// Listen opens a UDP socket on address and wraps it in a Conn.
func Listen(address string, cfgs ...Cfg) (*Conn, error) {
	pc, err := net.ListenPacket("udp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s failed", address)
	}
	c, err := NewConn(pc, cfgs...)
	if err != nil {
		_ = pc.Close()
		return nil, err
	}
	return c, nil
}

// NewConn wraps pc and starts its reader goroutine. The Conn owns pc from then on.
func NewConn(pc net.PacketConn, cfgs ...Cfg) (*Conn, error) {
	c := &Conn{
		pc:         pc,
		timeout:    DefaultRetransmitTimeout,
		maxRetries: DefaultMaxRetries,
		bufferTTL:  DefaultBufferTTL,
		window:     DefaultWindowSize,
		now:        time.Now,
		inbox:      make(chan inbound, inboxSize),
		waiters:    make(map[string]chan packet.Packet),
		dests:      make(map[string]*sync.Mutex),
		done:       make(chan struct{}),
	}
	for _, cfg := range cfgs {
		if err := cfg(c); err != nil {
			return nil, errors.Wrap(err, "apply Conn cfg failed")
		}
	}
	c.reasm = NewReassembler(c.bufferTTL, c.now)
	interval := c.bufferTTL / 2
	if interval <= 0 {
		interval = DefaultBufferTTL
	}
	c.reap = time.NewTicker(interval)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.readLoop()
	}()
	return c, nil
}

// LocalAddr returns the address the socket is bound to.
func (c *Conn) LocalAddr() net.Addr {
	return c.pc.LocalAddr()
}

// WindowSize returns the configured window size.
func (c *Conn) WindowSize() int {
	return c.window
}

// Close closes the socket and waits for the reader goroutine to exit.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.reap.Stop()
		err = c.pc.Close()
		c.wg.Wait()
	})
	return errors.Wrap(err, "close socket failed")
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Conn) readLoop() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := c.pc.ReadFrom(buf)
		if err != nil {
			if c.closed() || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.WithError(err).Warn("read datagram failed")
			continue
		}
		pkt, err := packet.Parse(buf[:n])
		if err != nil {
			logger.WithError(err).WithField(log.AddrField(addr)).Debug("dropped invalid packet")
			continue
		}
		if pkt.Type == packet.Ack {
			c.routeAck(addr, pkt)
			continue
		}
		// never block here: acks for pending sends must keep flowing.
		// A dropped packet is retransmitted by its sender.
		select {
		case c.inbox <- inbound{pkt: pkt, addr: addr}:
		default:
			logger.WithFields(log.PacketToFields(pkt)).WithField(log.AddrField(addr)).Debug("dropped packet, inbox full")
		}
	}
}

func (c *Conn) routeAck(addr net.Addr, pkt packet.Packet) {
	c.mu.Lock()
	ch, ok := c.waiters[addr.String()]
	c.mu.Unlock()
	if !ok {
		logger.WithFields(log.PacketToFields(pkt)).WithField(log.AddrField(addr)).Trace("dropped unsolicited ack")
		return
	}
	select {
	case ch <- pkt:
	default:
		logger.WithFields(log.PacketToFields(pkt)).Trace("dropped ack, waiter is behind")
	}
}

// lockDest serializes sends to one destination and registers the ack channel for it.
func (c *Conn) lockDest(dest string) (<-chan packet.Packet, func()) {
	c.mu.Lock()
	m, ok := c.dests[dest]
	if !ok {
		m = &sync.Mutex{}
		c.dests[dest] = m
	}
	c.mu.Unlock()

	m.Lock()
	ch := make(chan packet.Packet, ackQueueSize)
	c.mu.Lock()
	c.waiters[dest] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.waiters, dest)
		c.mu.Unlock()
		m.Unlock()
	}
}

// Send reliably delivers msg to dest using stop-and-wait, starting at seq.
// It returns the sequence number following the last packet sent: seq plus the
// number of packets (start, one per chunk, end).
func (c *Conn) Send(ctx context.Context, msg []byte, dest net.Addr, seq uint32) (uint32, error) {
	if c.closed() {
		return seq, ErrClosed
	}
	acks, unlock := c.lockDest(dest.String())
	defer unlock()

	if err := c.sendAndWait(ctx, acks, dest, packet.Start, seq, nil); err != nil {
		return seq, errors.Wrap(err, "send start failed")
	}
	seq++
	for _, chunk := range Chunk(msg, MaxChunkSize) {
		if err := c.sendAndWait(ctx, acks, dest, packet.Data, seq, chunk); err != nil {
			return seq, errors.Wrap(err, "send data failed")
		}
		seq++
	}
	if err := c.sendAndWait(ctx, acks, dest, packet.End, seq, nil); err != nil {
		return seq, errors.Wrap(err, "send end failed")
	}
	return seq + 1, nil
}

// sendAndWait transmits one packet until an ack carrying seq+1 arrives.
func (c *Conn) sendAndWait(ctx context.Context, acks <-chan packet.Packet, dest net.Addr, t packet.Type, seq uint32, payload []byte) error {
	raw := packet.Encode(t, seq, payload)
	want := seq + 1
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for attempt := 0; c.maxRetries == 0 || attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.WithFields(logrus.Fields{
				"type":    string(t),
				"seq":     seq,
				"attempt": attempt,
			}).WithField(log.AddrField(dest)).Debug("retransmitting packet")
		}
		if _, err := c.pc.WriteTo(raw, dest); err != nil {
			if c.closed() {
				return ErrClosed
			}
			return errors.Wrapf(err, "write to %s failed", dest)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(c.timeout)

	wait:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.done:
				return ErrClosed
			case ack := <-acks:
				if ack.Seq == want {
					return nil
				}
				logger.WithFields(log.PacketToFields(ack)).WithField("want", want).Trace("ignored stale ack")
			case <-timer.C:
				break wait
			}
		}
	}
	return errors.Wrapf(ErrDeliveryFailed, "%s %d to %s unacknowledged after %d retries", t, seq, dest, c.maxRetries)
}

// Receive blocks until a complete message arrives, acknowledging every start, data and
// end packet on the way. Invalid packets are dropped silently.
func (c *Conn) Receive(ctx context.Context) (Message, error) {
	for {
		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-c.done:
			return Message{}, ErrClosed
		case <-c.reap.C:
			if n := c.reasm.Evict(); n > 0 {
				logger.WithField("buffers", n).Info("evicted idle reassembly buffers")
			}
		case in := <-c.inbox:
			msg, ok := c.accept(in)
			if ok {
				return msg, nil
			}
		}
	}
}

func (c *Conn) accept(in inbound) (Message, bool) {
	res := c.reasm.Accept(in.addr.String(), in.pkt)
	entry := logger.WithFields(log.PacketToFields(in.pkt)).WithField(log.AddrField(in.addr))
	if res.Duplicate {
		entry.Debug("re-acking duplicate packet")
	}
	if !res.ShouldAck {
		entry.Debug("dropped out of order packet")
		return Message{}, false
	}
	if _, err := c.pc.WriteTo(packet.Encode(packet.Ack, res.Ack, nil), in.addr); err != nil {
		entry.WithError(err).Warn("send ack failed")
	}
	if !res.Complete {
		return Message{}, false
	}
	return Message{Body: res.Body, Addr: in.addr, NextSeq: res.Ack}, true
}
