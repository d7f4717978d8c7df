package transport

// Chunk splits msg into consecutive slices of at most size bytes.
// An empty message yields no chunks.
func Chunk(msg []byte, size int) [][]byte {
	if size <= 0 {
		size = MaxChunkSize
	}
	chunks := make([][]byte, 0, (len(msg)+size-1)/size)
	for start := 0; start < len(msg); start += size {
		end := start + size
		if end > len(msg) {
			end = len(msg)
		}
		chunks = append(chunks, msg[start:end])
	}
	return chunks
}
