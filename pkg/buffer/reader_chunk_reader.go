package buffer

import (
	"io"
)

type readerChunkReader struct {
	r             io.ReadCloser
	readSizeBytes int
	err           error
}

// NewChunkReaderFromReader creates a ChunkReader that reads data from
// an io.ReadCloser, such as an open file. Chunk sizes are normalized
// according to the provided ChunkPolicy.
func NewChunkReaderFromReader(r io.ReadCloser, chunkPolicy ChunkPolicy) ChunkReader {
	return newNormalizingChunkReader(
		&readerChunkReader{
			r:             r,
			readSizeBytes: chunkPolicy.defaultSizeBytes,
		},
		chunkPolicy)
}

func (r *readerChunkReader) Read() ([]byte, error) {
	if r.err != nil {
		// Stream is already in an error or EOF state.
		return nil, r.err
	}
	chunk := make([]byte, r.readSizeBytes)
	n, err := io.ReadFull(r.r, chunk)
	switch err {
	case nil:
		return chunk, nil
	case io.EOF:
		r.err = io.EOF
		return nil, io.EOF
	case io.ErrUnexpectedEOF:
		// Final chunk that is smaller than the read size.
		r.err = io.EOF
		return chunk[:n], nil
	default:
		r.err = err
		return nil, err
	}
}

func (r *readerChunkReader) Close() {
	r.r.Close()
}
