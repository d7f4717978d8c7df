// Package packet implements the wire framing of the reliable transport.
//
// A packet is the ASCII text
//
//	<type>|<seq>|<payload>|<checksum>
//
// where checksum is the decimal CRC32 of everything before it, trailing delimiter included.
// The payload is everything between the second and the last delimiter, so it may itself
// contain the delimiter; type and seq never do.
package packet

import (
	"bytes"
	"fmt"
	"strconv"

	"rudpchat/internal/pkg/checksum"

	"github.com/pkg/errors"
)

// Delimiter separates the packet fields.
const Delimiter = checksum.Delimiter

// Type is the kind of a packet.
type Type string

// Packet types.
const (
	Start Type = "start"
	Data  Type = "data"
	End   Type = "end"
	Ack   Type = "ack"
)

// Valid reports whether t is a known packet type.
func (t Type) Valid() bool {
	switch t {
	case Start, Data, End, Ack:
		return true
	}
	return false
}

// Packet is a decoded datagram.
type Packet struct {
	Type     Type
	Seq      uint32
	Payload  []byte
	Checksum uint32
}

func (p Packet) String() string {
	return fmt.Sprintf("%s|%d|%d bytes", p.Type, p.Seq, len(p.Payload))
}

// Encode frames a packet and appends its checksum.
func Encode(t Type, seq uint32, payload []byte) []byte {
	b := make([]byte, 0, len(t)+len(payload)+24)
	b = append(b, t...)
	b = append(b, Delimiter)
	b = strconv.AppendUint(b, uint64(seq), 10)
	b = append(b, Delimiter)
	b = append(b, payload...)
	b = append(b, Delimiter)
	return append(b, checksum.String(b)...)
}

// Decode splits raw into its fields without verifying the checksum.
// The returned payload does not alias raw.
func Decode(raw []byte) (Packet, error) {
	first := bytes.IndexByte(raw, Delimiter)
	if first < 0 {
		return Packet{}, ErrMalformed
	}
	second := bytes.IndexByte(raw[first+1:], Delimiter)
	if second < 0 {
		return Packet{}, ErrMalformed
	}
	second += first + 1
	last := bytes.LastIndexByte(raw, Delimiter)
	if last <= second {
		return Packet{}, ErrMalformed
	}

	t := Type(raw[:first])
	if !t.Valid() {
		return Packet{}, errors.Wrapf(ErrUnknownType, "type %q", string(raw[:first]))
	}
	seq, err := strconv.ParseUint(string(raw[first+1:second]), 10, 32)
	if err != nil {
		return Packet{}, errors.Wrap(ErrMalformed, "parse sequence number failed")
	}
	sum, err := strconv.ParseUint(string(raw[last+1:]), 10, 32)
	if err != nil {
		return Packet{}, errors.Wrap(ErrMalformed, "parse checksum failed")
	}
	var payload []byte
	if n := last - second - 1; n > 0 {
		payload = make([]byte, n)
		copy(payload, raw[second+1:last])
	}
	return Packet{
		Type:     t,
		Seq:      uint32(seq),
		Payload:  payload,
		Checksum: uint32(sum),
	}, nil
}

// Validate recomputes the checksum over every field but the checksum and compares it
// with the trailer. It returns false on malformed input.
func Validate(raw []byte) bool {
	return checksum.Verify(raw)
}

// Parse validates and decodes raw.
func Parse(raw []byte) (Packet, error) {
	if !Validate(raw) {
		return Packet{}, ErrBadChecksum
	}
	return Decode(raw)
}
