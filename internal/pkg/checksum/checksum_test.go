package checksum

import (
	"hash/crc32"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	data := []byte("start|42||")
	require.Equal(t, crc32.ChecksumIEEE(data), Sum(data))
	require.Equal(t, strconv.FormatUint(uint64(crc32.ChecksumIEEE(data)), 10), String(data))
}

func TestVerify(t *testing.T) {
	body := []byte("data|7|join 5 alice|")
	raw := append(append([]byte{}, body...), String(body)...)
	require.True(t, Verify(raw))

	for _, bad := range [][]byte{
		nil,
		[]byte(""),
		[]byte("no delimiter"),
		[]byte("data|7|x|notanumber"),
		[]byte("data|7|x|"),
		[]byte("data|7|x|99999999999999"),
		append(append([]byte{}, body...), "1"...),
	} {
		require.False(t, Verify(bad), "%q", bad)
	}
}
