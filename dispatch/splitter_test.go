package dispatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdcosta/wordstats/textproc"
)

func writeTempFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// readAllChunks drains the reader and returns the chunks in order.
func readAllChunks(t *testing.T, r *ChunkReader) []*FileChunk {
	t.Helper()
	var chunks []*FileChunk
	for {
		chunk, err := r.Next()
		require.NoError(t, err)
		chunks = append(chunks, chunk)
		if chunk.Finished {
			return chunks
		}
	}
}

func TestChunkReaderRelocatesBoundary(t *testing.T) {
	// capacity 18 reads 11 bytes at a time; a naive cut at offset 11 would
	// bisect "cccc"
	content := "aaaa bbbb cccc dddd"
	r := NewChunkReader(writeTempFile(t, content), 18)

	chunks := readAllChunks(t, r)
	require.Len(t, chunks, 2)

	first := chunks[0]
	assert.Equal(t, "aaaa bbbb ", string(first.Data[:first.Size]))
	assert.Equal(t, byte(' '), first.Last)
	assert.False(t, first.Finished)

	second := chunks[1]
	assert.Equal(t, "cccc dddd", string(second.Data[:second.Size]))
	assert.Equal(t, byte('d'), second.Last)
	assert.True(t, second.Finished)
}

func TestChunkReaderLosesNoBytes(t *testing.T) {
	content := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	for _, capacity := range []int{18, 32, 77, 4096} {
		r := NewChunkReader(writeTempFile(t, content), capacity)
		var rebuilt strings.Builder
		for _, chunk := range readAllChunks(t, r) {
			rebuilt.Write(chunk.Data[:chunk.Size])
		}
		assert.Equal(t, content, rebuilt.String(), "capacity %d", capacity)
	}
}

func TestChunkReaderChunkCountsMatchWholeFile(t *testing.T) {
	content := strings.Repeat("o vento forte levou as folhas secas ", 25)
	whole := textproc.Classify([]byte(content), len(content), textproc.WhitespaceSentinel)

	for _, capacity := range []int{24, 64, 250} {
		r := NewChunkReader(writeTempFile(t, content), capacity)
		var sum textproc.Counts
		carry := byte(textproc.WhitespaceSentinel)
		for _, chunk := range readAllChunks(t, r) {
			sum.Add(textproc.Classify(chunk.Data, chunk.Size, rune(carry)))
			carry = chunk.Last
		}
		assert.Equal(t, whole, sum, "capacity %d", capacity)
	}
}

func TestChunkReaderEmptyFile(t *testing.T) {
	r := NewChunkReader(writeTempFile(t, ""), 64)
	chunk, err := r.Next()
	require.NoError(t, err)
	assert.True(t, chunk.Finished)
	assert.Zero(t, chunk.Size)
	assert.Equal(t, byte(textproc.WhitespaceSentinel), chunk.Last)
}

func TestChunkReaderSmallFileSingleChunk(t *testing.T) {
	r := NewChunkReader(writeTempFile(t, "hi"), 64)
	chunk, err := r.Next()
	require.NoError(t, err)
	assert.True(t, chunk.Finished)
	assert.Equal(t, 2, chunk.Size)
	assert.Equal(t, byte('i'), chunk.Last)
}

func TestChunkReaderOversizedWord(t *testing.T) {
	r := NewChunkReader(writeTempFile(t, strings.Repeat("x", 40)), 18)
	_, err := r.Next()
	assert.ErrorIs(t, err, ErrNoBoundary)
}

func TestChunkReaderFreshBufferPerChunk(t *testing.T) {
	r := NewChunkReader(writeTempFile(t, "um dois tres quatro cinco seis"), 18)
	first, err := r.Next()
	require.NoError(t, err)
	firstCopy := string(first.Data[:first.Size])

	_, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, firstCopy, string(first.Data[:first.Size]))
}
