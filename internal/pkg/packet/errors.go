package packet

import "github.com/pkg/errors"

// ErrMalformed is returned when a datagram does not have the type|seq|payload|checksum shape.
var ErrMalformed = errors.New("malformed packet")

// ErrUnknownType is returned when the type field is not one of start, data, end or ack.
var ErrUnknownType = errors.New("unknown packet type")

// ErrBadChecksum is returned when the trailing checksum does not match the packet contents.
var ErrBadChecksum = errors.New("bad checksum")
