// Package checksum computes and verifies the CRC32 trailer carried by every packet.
package checksum

import (
	"bytes"
	"hash/crc32"
	"strconv"
)

// Delimiter separates the checksum trailer from the bytes it covers.
const Delimiter = '|'

var table = crc32.MakeTable(crc32.IEEE)

// Sum returns the CRC32 (IEEE) of data.
func Sum(data []byte) uint32 {
	return crc32.Checksum(data, table)
}

// String returns the checksum of data rendered as a decimal string, which is the form
// it takes on the wire.
func String(data []byte) string {
	return strconv.FormatUint(uint64(Sum(data)), 10)
}

// Verify reports whether raw ends in a decimal checksum matching every byte that precedes it,
// including the delimiter in front of the checksum itself.
// It never panics on malformed input.
func Verify(raw []byte) bool {
	i := bytes.LastIndexByte(raw, Delimiter)
	if i < 0 {
		return false
	}
	want, err := strconv.ParseUint(string(raw[i+1:]), 10, 32)
	if err != nil {
		return false
	}
	return uint64(Sum(raw[:i+1])) == want
}
