package dispatch

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdcosta/wordstats/textproc"
)

// boundaryReserve is kept back from every read so that the effective chunk
// plus its trimmed tail always fit inside the fixed-capacity wire buffer.
const boundaryReserve = 7

// ErrNoBoundary means a full read contained no whitespace at all, i.e. a
// single word longer than the chunk capacity. The capacity minimum is
// checked at startup; hitting this at runtime means the input breaks that
// assumption and the run cannot continue correctly.
var ErrNoBoundary = errors.New("no word boundary within chunk capacity")

// FileChunk is one effective chunk produced by a ChunkReader.
type FileChunk struct {
	// Data is a fresh buffer of exactly the configured capacity; only
	// Data[:Size] is meaningful.
	Data []byte
	Size int
	// Last is the final byte of the effective chunk, carried into the next
	// chunk of the same file (WhitespaceSentinel for an empty chunk).
	Last byte
	// Finished is true once the file is exhausted; the chunk it is reported
	// on is still valid and must be dispatched.
	Finished bool
}

// ChunkReader splits a file into chunks that always end on a word boundary.
// Each read takes up to capacity-boundaryReserve bytes; on a full read the
// chunk is truncated at the last whitespace byte and the file cursor is
// moved back so the cut-off tail is re-read as the start of the next chunk.
// A word therefore never spans two chunks.
type ChunkReader struct {
	f        *os.File
	capacity int
}

// NewChunkReader wraps f. capacity must already be validated against
// MinChunkBytes; the reader does not take ownership of f.
func NewChunkReader(f *os.File, capacity int) *ChunkReader {
	return &ChunkReader{f: f, capacity: capacity}
}

// Next produces the next effective chunk. It allocates a fresh buffer per
// chunk so the caller may hand it to the transport without copying.
func (r *ChunkReader) Next() (*FileChunk, error) {
	buf := make([]byte, r.capacity)
	want := r.capacity - boundaryReserve

	n, err := io.ReadFull(r.f, buf[:want])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("chunk read: %w", err)
	}

	chunk := &FileChunk{Data: buf, Last: textproc.WhitespaceSentinel}

	if n < want {
		// short read: the file is exhausted, keep everything
		chunk.Size = n
		chunk.Finished = true
	} else {
		// full read: cut at the last whitespace and re-read the tail
		cut := -1
		for i := n - 1; i >= 0; i-- {
			if textproc.IsWhitespace(rune(buf[i])) {
				cut = i
				break
			}
		}
		if cut < 0 {
			return nil, fmt.Errorf("%w (capacity %d)", ErrNoBoundary, r.capacity)
		}
		chunk.Size = cut + 1
		if _, err := r.f.Seek(int64(chunk.Size-n), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("chunk seek-back: %w", err)
		}
	}

	if chunk.Size > 0 {
		chunk.Last = buf[chunk.Size-1]
	}
	return chunk, nil
}
