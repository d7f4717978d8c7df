package session

import "net"

// Sequences tracks the next outbound sequence number per peer address.
// It is owned by the goroutine that sends to peers and is not safe for concurrent use.
type Sequences map[string]uint32

// Next returns the sequence number to start the next message to addr with.
// The first time a peer is seen, the counter is seeded with fallback.
func (s Sequences) Next(addr net.Addr, fallback uint32) uint32 {
	if seq, ok := s[addr.String()]; ok {
		return seq
	}
	s[addr.String()] = fallback
	return fallback
}

// Advance records the sequence number following a completed send to addr.
func (s Sequences) Advance(addr net.Addr, next uint32) {
	s[addr.String()] = next
}

// Forget drops the counter for addr.
func (s Sequences) Forget(addr net.Addr) {
	delete(s, addr.String())
}
