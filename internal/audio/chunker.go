package audio

// Chunker regroups arbitrary-sized microphone reads into fixed-duration
// PCM16 chunks for the recognition engines.
type Chunker struct {
	sampleRate      int
	channels        int
	chunkMs         int
	samplesPerChunk int
	buffer          []int16
}

// NewChunker creates a chunker producing chunks of chunkMs milliseconds.
func NewChunker(sampleRate, channels, chunkMs int) *Chunker {
	return &Chunker{
		sampleRate:      sampleRate,
		channels:        channels,
		chunkMs:         chunkMs,
		samplesPerChunk: (sampleRate * channels * chunkMs) / 1000,
	}
}

// ChunkMs returns the chunk duration in milliseconds.
func (c *Chunker) ChunkMs() int {
	return c.chunkMs
}

// Push appends samples to the buffer and returns all complete chunks.
func (c *Chunker) Push(samples []int16) [][]int16 {
	c.buffer = append(c.buffer, samples...)

	var chunks [][]int16
	for len(c.buffer) >= c.samplesPerChunk {
		chunk := make([]int16, c.samplesPerChunk)
		copy(chunk, c.buffer[:c.samplesPerChunk])
		c.buffer = c.buffer[c.samplesPerChunk:]
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Reset discards any buffered samples.
func (c *Chunker) Reset() {
	c.buffer = c.buffer[:0]
}
