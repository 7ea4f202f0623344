package digest

import (
	"hash"
)

// ED2KChunkSizeBytes is the size of the parts into which the ed2k
// network splits files. Each part is digested separately.
const ED2KChunkSizeBytes = 9728000

// Accumulator computes an ed2k style two-level digest over a stream of
// data. The stream is split up in chunks of a fixed size. Every chunk
// is digested using a BlockDigestFunc. The final digest is obtained as
// follows:
//
// - Streams that are no larger than a single chunk use the block
//   digest of the full stream.
// - Larger streams use the block digest of the concatenated digests of
//   all chunks, including the trailing partial chunk.
//
// A stream whose size is an exact multiple of the chunk size does not
// have a trailing partial chunk. The digest of the empty remainder is
// not part of the concatenation.
//
// Finalize() and Sum() do not alter the state of the Accumulator. It
// is permitted to call them multiple times and to write more data
// afterwards, in which case the stream simply continues.
//
// Accumulator is not safe for concurrent use.
type Accumulator struct {
	blockDigest    BlockDigestFunc
	chunkSizeBytes int

	// Data of the current chunk that has not been digested yet.
	// Its length never exceeds chunkSizeBytes.
	pending []byte
	// Digests of all full chunks that are known not to be the
	// final chunk of the stream.
	blockDigests []BlockDigest
}

var _ hash.Hash = (*Accumulator)(nil)

// NewAccumulator creates an Accumulator that splits its input into
// chunks of a given size. The initial data is appended to the stream
// right away, as if it were passed to Append().
func NewAccumulator(blockDigest BlockDigestFunc, chunkSizeBytes int, initial []byte) *Accumulator {
	if chunkSizeBytes <= 0 {
		panic("Chunk size must be positive")
	}
	a := &Accumulator{
		blockDigest:    blockDigest,
		chunkSizeBytes: chunkSizeBytes,
	}
	a.Append(initial)
	return a
}

// NewED2KHasher creates a hash.Hash that computes ed2k hashes, using
// MD4 as the block digest function.
func NewED2KHasher() hash.Hash {
	return NewAccumulator(MD4BlockDigest, ED2KChunkSizeBytes, nil)
}

// Append data to the stream. Only full chunks are digested eagerly. A
// full chunk is only digested once more data follows it, as the final
// chunk of a stream needs to be treated differently by Finalize().
func (a *Accumulator) Append(p []byte) {
	for len(p) > 0 {
		if len(a.pending) == a.chunkSizeBytes {
			a.flush()
		}
		n := a.chunkSizeBytes - len(a.pending)
		if n > len(p) {
			n = len(p)
		}
		a.pending = append(a.pending, p[:n]...)
		p = p[n:]
	}
}

// flush digests the current chunk and starts a new one. The buffer of
// the current chunk is reused, so that memory usage stays bounded by
// the chunk size.
func (a *Accumulator) flush() {
	a.blockDigests = append(a.blockDigests, a.blockDigest(a.pending))
	a.pending = a.pending[:0]
}

// Hashset returns the digests of all parts of the stream, in order.
// Streams that are no larger than a single chunk consist of a single
// part. The returned slice is owned by the caller.
func (a *Accumulator) Hashset() []BlockDigest {
	hashset := make([]BlockDigest, 0, len(a.blockDigests)+1)
	hashset = append(hashset, a.blockDigests...)
	if len(a.blockDigests) == 0 || len(a.pending) > 0 {
		// Streams ending exactly at a chunk boundary don't
		// have a trailing part.
		hashset = append(hashset, a.blockDigest(a.pending))
	}
	return hashset
}

// Finalize returns the digest of all data that has been appended.
func (a *Accumulator) Finalize() BlockDigest {
	if len(a.blockDigests) == 0 {
		return a.blockDigest(a.pending)
	}
	return a.blockDigest(concatenateBlockDigests(a.Hashset()))
}

// Write appends data to the stream. It never fails.
func (a *Accumulator) Write(p []byte) (int, error) {
	a.Append(p)
	return len(p), nil
}

// Sum appends the final digest to b.
func (a *Accumulator) Sum(b []byte) []byte {
	d := a.Finalize()
	return append(b, d[:]...)
}

// Reset the Accumulator to the state corresponding to an empty stream.
func (a *Accumulator) Reset() {
	a.pending = a.pending[:0]
	a.blockDigests = nil
}

// Size returns the size of the digest returned by Sum().
func (a *Accumulator) Size() int {
	return BlockDigestSizeBytes
}

// BlockSize returns the chunk size. Writes that are a multiple of this
// size never leave partial chunks behind.
func (a *Accumulator) BlockSize() int {
	return a.chunkSizeBytes
}
