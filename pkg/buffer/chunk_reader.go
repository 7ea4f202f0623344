package buffer

import (
	"io"
)

// ChunkReader is similar to io.ReadCloser, except that data is not
// copied from the stream into an output array. The implementation is
// responsible for providing space for the data. Data returned by
// Read() remains valid until the next call to Read() or Close().
//
// Read() returns io.EOF once all data has been returned.
type ChunkReader interface {
	Read() ([]byte, error)
	Close()
}

// IntoWriter copies all data returned by a ChunkReader into a writer.
// The ChunkReader is closed afterwards.
func IntoWriter(r ChunkReader, w io.Writer) error {
	defer r.Close()

	for {
		chunk, err := r.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
}
