package packet

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	raw := Encode(Data, 12, []byte("join 5 alice"))
	require.Regexp(t, `^data\|12\|join 5 alice\|[0-9]+$`, string(raw))
	require.True(t, Validate(raw))
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		seq     uint32
		payload []byte
	}{
		{"start", Start, 1, nil},
		{"data", Data, 100000, []byte("send_message 13 1 bob hello")},
		{"delimiter in payload", Data, 5, []byte("a|b||c|")},
		{"end", End, 4294967295, nil},
		{"ack", Ack, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Encode(tt.typ, tt.seq, tt.payload)
			require.True(t, Validate(raw))
			pkt, err := Parse(raw)
			require.NoError(t, err)
			require.Equal(t, tt.typ, pkt.Type)
			require.Equal(t, tt.seq, pkt.Seq)
			require.Equal(t, string(tt.payload), string(pkt.Payload))
		})
	}
}

func TestDecodeDoesNotAlias(t *testing.T) {
	raw := Encode(Data, 1, []byte("hello"))
	pkt, err := Decode(raw)
	require.NoError(t, err)
	for i := range raw {
		raw[i] = 'x'
	}
	require.Equal(t, "hello", string(pkt.Payload))
}

func TestDecodeMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"data",
		"data|1",
		"data|1|",
		"data|x|payload|123",
		"data|-1|payload|123",
		"data|1|payload|abc",
	} {
		_, err := Decode([]byte(raw))
		require.True(t, errors.Is(err, ErrMalformed), "%q: %v", raw, err)
	}
	_, err := Decode([]byte("nope|1||123"))
	require.True(t, errors.Is(err, ErrUnknownType))
}

func TestValidateNeverPanics(t *testing.T) {
	for _, raw := range []string{"", "|", "||", "|||", "start|1||", "\xff\xfe|\x00|"} {
		require.False(t, Validate([]byte(raw)))
	}
}

func TestParseRejectsCorruption(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	raw := Encode(Data, 77, []byte("forward_message 13 1 alice hello"))
	for i := 0; i < len(raw); i++ {
		mutated := append([]byte{}, raw...)
		mutated[i] ^= byte(r.Intn(255) + 1)
		_, err := Parse(mutated)
		require.Error(t, err, "byte %d", i)
	}
}
