package buffer

import (
	"io"
)

type normalizingChunkReader struct {
	ChunkReader
	minimumChunkSizeBytes int
	maximumChunkSizeBytes int

	// Data that was returned by the underlying ChunkReader, but
	// not yet returned to the caller.
	leftover []byte
	lastErr  error
}

// newNormalizingChunkReader creates a decorator for ChunkReader that
// normalizes the sizes of the chunks returned by Read(). Empty chunks
// are omitted. Chunks that are smaller than the minimum size are
// merged with subsequent ones, except at the end of the stream.
// Chunks that exceed the maximum size are decomposed into smaller
// ones.
func newNormalizingChunkReader(r ChunkReader, chunkPolicy ChunkPolicy) ChunkReader {
	return &normalizingChunkReader{
		ChunkReader:           r,
		minimumChunkSizeBytes: chunkPolicy.minimumSizeBytes,
		maximumChunkSizeBytes: chunkPolicy.maximumSizeBytes,
	}
}

func (r *normalizingChunkReader) readNextChunk() ([]byte, error) {
	if len(r.leftover) > 0 {
		chunk := r.leftover
		r.leftover = nil
		return chunk, nil
	}
	if r.lastErr != nil {
		return nil, r.lastErr
	}
	chunk, err := r.ChunkReader.Read()
	r.lastErr = err
	return chunk, err
}

func (r *normalizingChunkReader) readChunkWithMinimumSize() ([]byte, error) {
	chunk, err := r.readNextChunk()
	if err != nil {
		return nil, err
	}
	if len(chunk) >= r.minimumChunkSizeBytes {
		return chunk, nil
	}

	// Chunk is too small. Concatenate subsequent chunks into a
	// larger one.
	fullChunk := append([]byte(nil), chunk...)
	for len(fullChunk) < r.minimumChunkSizeBytes {
		chunk, err := r.readNextChunk()
		if err == io.EOF && len(fullChunk) > 0 {
			// The final chunk may be smaller than the
			// minimum size.
			break
		} else if err != nil {
			return nil, err
		}
		fullChunk = append(fullChunk, chunk...)
	}
	return fullChunk, nil
}

func (r *normalizingChunkReader) Read() ([]byte, error) {
	chunk, err := r.readChunkWithMinimumSize()
	if err != nil {
		return nil, err
	}
	if len(chunk) > r.maximumChunkSizeBytes {
		r.leftover = chunk[r.maximumChunkSizeBytes:]
		return chunk[:r.maximumChunkSizeBytes], nil
	}
	return chunk, nil
}
