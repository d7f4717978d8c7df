package transport

import (
	"bytes"
	"time"

	"rudpchat/internal/pkg/packet"
)

// buffer accumulates the chunks of one in-progress message from a peer.
type buffer struct {
	chunks   [][]byte
	expected uint32
	startSeq uint32
	started  bool
	lastSeen time.Time
}

// completion remembers where the last finished exchange with a peer ended,
// so a retransmitted end packet is re-acked instead of delivered twice.
type completion struct {
	expected uint32
	at       time.Time
}

// Result is the outcome of feeding one packet to a Reassembler.
type Result struct {
	// Ack is the sequence number to acknowledge with when ShouldAck is set.
	Ack       uint32
	ShouldAck bool
	// Duplicate is set when the packet had already been accepted.
	Duplicate bool
	// Complete is set when an end packet finished a message; Body holds the message.
	Complete bool
	Body     []byte
}

// Reassembler holds the per-peer reassembly buffers of the receive path.
// It is not safe for concurrent use; the receive path owns it.
type Reassembler struct {
	buffers   map[string]*buffer
	completed map[string]completion
	ttl       time.Duration
	now       func() time.Time
}

// NewReassembler creates a Reassembler whose idle state expires after ttl.
func NewReassembler(ttl time.Duration, now func() time.Time) *Reassembler {
	if now == nil {
		now = time.Now
	}
	return &Reassembler{
		buffers:   make(map[string]*buffer),
		completed: make(map[string]completion),
		ttl:       ttl,
		now:       now,
	}
}

// Accept applies a start, data or end packet received from peer.
func (r *Reassembler) Accept(peer string, pkt packet.Packet) Result {
	now := r.now()
	buf, ok := r.buffers[peer]

	switch {
	case pkt.Type == packet.Start:
		if ok && ((buf.started && pkt.Seq == buf.startSeq) || seqBefore(pkt.Seq, buf.expected)) {
			buf.lastSeen = now
			return Result{Ack: buf.expected, ShouldAck: true, Duplicate: true}
		}
		if done, seen := r.completed[peer]; !ok && seen && seqBefore(pkt.Seq, done.expected) {
			return Result{Ack: done.expected, ShouldAck: true, Duplicate: true}
		}
		// a start at or past the expected seq opens a fresh exchange, dropping any orphaned one
		buf = &buffer{expected: pkt.Seq, startSeq: pkt.Seq, started: true}
		r.buffers[peer] = buf
	case !ok:
		if done, seen := r.completed[peer]; seen && seqBefore(pkt.Seq, done.expected) {
			return Result{Ack: done.expected, ShouldAck: true, Duplicate: true}
		}
		buf = &buffer{expected: pkt.Seq}
		r.buffers[peer] = buf
	}
	buf.lastSeen = now

	if seqBefore(pkt.Seq, buf.expected) {
		return Result{Ack: buf.expected, ShouldAck: true, Duplicate: true}
	}
	if pkt.Seq != buf.expected {
		return Result{}
	}

	buf.expected++
	res := Result{Ack: buf.expected, ShouldAck: true}
	switch pkt.Type {
	case packet.Data:
		buf.chunks = append(buf.chunks, pkt.Payload)
	case packet.End:
		delete(r.buffers, peer)
		r.completed[peer] = completion{expected: buf.expected, at: now}
		res.Complete = true
		res.Body = bytes.Join(buf.chunks, nil)
		if res.Body == nil {
			res.Body = []byte{}
		}
	}
	return res
}

// Pending returns the number of peers with a message in progress.
func (r *Reassembler) Pending() int {
	return len(r.buffers)
}

// Evict drops buffers and completion records idle for longer than the ttl,
// returning the number of buffers dropped.
func (r *Reassembler) Evict() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	var n int
	for peer, buf := range r.buffers {
		if buf.lastSeen.Before(cutoff) {
			delete(r.buffers, peer)
			n++
		}
	}
	for peer, done := range r.completed {
		if done.at.Before(cutoff) {
			delete(r.completed, peer)
		}
	}
	return n
}

// seqBefore reports whether a precedes b, tolerating wrap-around.
func seqBefore(a, b uint32) bool {
	return int32(a-b) < 0
}
