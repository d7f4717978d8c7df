package transport

import (
	"bytes"
	"testing"
	"time"

	"rudpchat/internal/pkg/packet"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func pkt(typ packet.Type, seq uint32, payload string) packet.Packet {
	p := packet.Packet{Type: typ, Seq: seq}
	if payload != "" {
		p.Payload = []byte(payload)
	}
	return p
}

func TestChunk(t *testing.T) {
	for _, size := range []int{0, 1, 1399, 1400, 1401, 2800, 10000} {
		msg := bytes.Repeat([]byte{'x'}, size)
		chunks := Chunk(msg, MaxChunkSize)
		require.Len(t, chunks, (size+MaxChunkSize-1)/MaxChunkSize)
		for _, c := range chunks {
			require.LessOrEqual(t, len(c), MaxChunkSize)
		}
		require.Equal(t, msg, append([]byte{}, bytes.Join(chunks, nil)...))
	}
}

func TestReassemblerSequence(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	res := r.Accept("a", pkt(packet.Start, 100, ""))
	require.Equal(t, Result{Ack: 101, ShouldAck: true}, res)
	for i, chunk := range []string{"join ", "5 ", "alice"} {
		res = r.Accept("a", pkt(packet.Data, uint32(101+i), chunk))
		require.True(t, res.ShouldAck)
		require.Equal(t, uint32(102+i), res.Ack)
		require.False(t, res.Complete)
	}
	res = r.Accept("a", pkt(packet.End, 104, ""))
	require.True(t, res.Complete)
	require.Equal(t, uint32(105), res.Ack)
	require.Equal(t, "join 5 alice", string(res.Body))
	require.Zero(t, r.Pending())
}

func TestReassemblerEmptyMessage(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	r.Accept("a", pkt(packet.Start, 1, ""))
	res := r.Accept("a", pkt(packet.End, 2, ""))
	require.True(t, res.Complete)
	require.NotNil(t, res.Body)
	require.Empty(t, res.Body)
}

func TestReassemblerDuplicates(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	r.Accept("a", pkt(packet.Start, 7, ""))

	res := r.Accept("a", pkt(packet.Start, 7, ""))
	require.Equal(t, Result{Ack: 8, ShouldAck: true, Duplicate: true}, res)

	r.Accept("a", pkt(packet.Data, 8, "hello"))
	res = r.Accept("a", pkt(packet.Data, 8, "hello"))
	require.Equal(t, Result{Ack: 9, ShouldAck: true, Duplicate: true}, res)

	res = r.Accept("a", pkt(packet.End, 9, ""))
	require.True(t, res.Complete)
	require.Equal(t, "hello", string(res.Body))

	// the sender missed the final ack and retransmits the end packet
	res = r.Accept("a", pkt(packet.End, 9, ""))
	require.Equal(t, Result{Ack: 10, ShouldAck: true, Duplicate: true}, res)
	require.Zero(t, r.Pending())

	// the next message continues from the same counter
	res = r.Accept("a", pkt(packet.Start, 10, ""))
	require.Equal(t, uint32(11), res.Ack)
	require.False(t, res.Duplicate)
}

func TestReassemblerDropsFuturePackets(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	r.Accept("a", pkt(packet.Start, 1, ""))
	res := r.Accept("a", pkt(packet.Data, 5, "late"))
	require.False(t, res.ShouldAck)
	res = r.Accept("a", pkt(packet.Data, 2, "ok"))
	require.Equal(t, uint32(3), res.Ack)
	res = r.Accept("a", pkt(packet.End, 3, ""))
	require.Equal(t, "ok", string(res.Body))
}

func TestReassemblerPeersAreIndependent(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	r.Accept("a", pkt(packet.Start, 1, ""))
	r.Accept("b", pkt(packet.Start, 50, ""))
	r.Accept("a", pkt(packet.Data, 2, "from a"))
	r.Accept("b", pkt(packet.Data, 51, "from b"))
	require.Equal(t, 2, r.Pending())
	require.Equal(t, "from b", string(r.Accept("b", pkt(packet.End, 52, "")).Body))
	require.Equal(t, "from a", string(r.Accept("a", pkt(packet.End, 3, "")).Body))
}

func TestReassemblerRestartReplacesOrphan(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	r.Accept("a", pkt(packet.Start, 1, ""))
	r.Accept("a", pkt(packet.Data, 2, "abandoned"))
	r.Accept("a", pkt(packet.Start, 900, ""))
	r.Accept("a", pkt(packet.Data, 901, "fresh"))
	require.Equal(t, "fresh", string(r.Accept("a", pkt(packet.End, 902, "")).Body))
}

func TestReassemblerStaleStartKeepsMessage(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	r.Accept("a", pkt(packet.Start, 1, ""))
	r.Accept("a", pkt(packet.Data, 2, "first"))
	require.Equal(t, "first", string(r.Accept("a", pkt(packet.End, 3, "")).Body))

	r.Accept("a", pkt(packet.Start, 4, ""))
	r.Accept("a", pkt(packet.Data, 5, "second"))

	// a start from the finished exchange arrives late
	res := r.Accept("a", pkt(packet.Start, 1, ""))
	require.Equal(t, Result{Ack: 6, ShouldAck: true, Duplicate: true}, res)

	res = r.Accept("a", pkt(packet.End, 6, ""))
	require.True(t, res.Complete)
	require.Equal(t, uint32(7), res.Ack)
	require.Equal(t, "second", string(res.Body))
}

func TestReassemblerStaleStartAfterCompletion(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	r.Accept("a", pkt(packet.Start, 10, ""))
	r.Accept("a", pkt(packet.End, 11, ""))

	res := r.Accept("a", pkt(packet.Start, 10, ""))
	require.Equal(t, Result{Ack: 12, ShouldAck: true, Duplicate: true}, res)
	require.Zero(t, r.Pending())

	res = r.Accept("a", pkt(packet.Start, 12, ""))
	require.Equal(t, Result{Ack: 13, ShouldAck: true}, res)
	r.Accept("a", pkt(packet.Data, 13, "next"))
	require.Equal(t, "next", string(r.Accept("a", pkt(packet.End, 14, "")).Body))
}

func TestReassemblerDataWithoutStart(t *testing.T) {
	r := NewReassembler(time.Minute, nil)
	res := r.Accept("a", pkt(packet.Data, 40, "x"))
	require.Equal(t, uint32(41), res.Ack)
	require.Equal(t, "x", string(r.Accept("a", pkt(packet.End, 41, "")).Body))
}

func TestReassemblerEvict(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewReassembler(time.Minute, clock.Now)
	r.Accept("idle", pkt(packet.Start, 1, ""))
	clock.Advance(45 * time.Second)
	r.Accept("busy", pkt(packet.Start, 1, ""))
	require.Zero(t, r.Evict())

	clock.Advance(30 * time.Second)
	require.Equal(t, 1, r.Evict())
	require.Equal(t, 1, r.Pending())

	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, r.Evict())
	require.Zero(t, r.Pending())
}

func TestReassemblerEvictDisabled(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewReassembler(0, clock.Now)
	r.Accept("a", pkt(packet.Start, 1, ""))
	clock.Advance(time.Hour)
	require.Zero(t, r.Evict())
	require.Equal(t, 1, r.Pending())
}
