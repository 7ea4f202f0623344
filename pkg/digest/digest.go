package digest

import (
	"encoding/hex"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Digest holds the identification of a file on the ed2k network: its
// ed2k hash and its size. The use of this object is preferred over
// passing around hash strings for a couple of reasons.
//
// - Instances of these objects are guaranteed not to contain any
//   degenerate values. The hash is lowercase hexadecimal and has the
//   right length. The size is non-negative.
// - The size determines how the file is split up in parts, which is
//   needed to validate hashsets and individual parts.
//
// Because Digest objects are frequently used as keys, this
// implementation immediately constructs a key representation upon
// creation.
type Digest struct {
	value string
}

var (
	// BadDigest is a default instance of Digest. It can, for
	// example, be used as a function return value for error cases.
	BadDigest Digest
)

// Unpack the size field from the string representation stored inside
// the Digest object.
func (d Digest) unpack() int64 {
	sizeBytes := int64(0)
	for _, c := range d.value[BlockDigestSizeBytes*2+1:] {
		sizeBytes = sizeBytes*10 + int64(c-'0')
	}
	return sizeBytes
}

// NewDigest constructs a Digest object from a hash and a file size.
// The instance returned by this function is guaranteed to be
// non-degenerate.
func NewDigest(hash string, sizeBytes int64) (Digest, error) {
	// Validate the size.
	if sizeBytes < 0 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "Invalid digest size: %d bytes", sizeBytes)
	}

	// Validate the hash.
	if l := len(hash); l != BlockDigestSizeBytes*2 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "Unknown digest hash length: %d characters", l)
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return BadDigest, status.Errorf(codes.InvalidArgument, "Non-hexadecimal character in digest hash: %#U", c)
		}
	}
	return newDigestUnchecked(hash, sizeBytes), nil
}

func newDigestUnchecked(hash string, sizeBytes int64) Digest {
	return Digest{
		value: fmt.Sprintf("%s-%d", hash, sizeBytes),
	}
}

// MustNewDigest constructs a Digest similar to NewDigest, but never
// returns an error. Instead, execution will abort if the resulting
// instance would be degenerate. Useful for unit testing.
func MustNewDigest(hash string, sizeBytes int64) Digest {
	d, err := NewDigest(hash, sizeBytes)
	if err != nil {
		panic(err)
	}
	return d
}

// GetHashString returns the ed2k hash of the file as a lowercase
// hexadecimal string.
func (d Digest) GetHashString() string {
	return d.value[:BlockDigestSizeBytes*2]
}

// GetHashBytes returns the ed2k hash of the file in binary form.
func (d Digest) GetHashBytes() BlockDigest {
	var b BlockDigest
	if _, err := hex.Decode(b[:], []byte(d.GetHashString())); err != nil {
		panic("Failed to decode digest hash, even though its contents have already been validated")
	}
	return b
}

// GetSizeBytes returns the size of the file, in bytes.
func (d Digest) GetSizeBytes() int64 {
	return d.unpack()
}

// GetPartCount returns the number of parts of the file, which is equal
// to the number of entries in its hashset. Empty files and files no
// larger than a single chunk consist of one part. Files whose size is
// an exact multiple of the chunk size don't have an empty trailing
// part.
func (d Digest) GetPartCount() int64 {
	sizeBytes := d.GetSizeBytes()
	if sizeBytes <= ED2KChunkSizeBytes {
		return 1
	}
	return convertSizeToPartCount(sizeBytes, ED2KChunkSizeBytes)
}

// GetPartSizeBytes returns the size of a part of the file. All parts
// have the size of a full chunk, except for the last one.
func (d Digest) GetPartSizeBytes(part int64) int64 {
	if part == d.GetPartCount()-1 {
		return d.GetSizeBytes() - part*ED2KChunkSizeBytes
	}
	return ED2KChunkSizeBytes
}

func (d Digest) String() string {
	return d.value
}

func convertSizeToPartCount(sizeBytes int64, chunkSizeBytes int64) int64 {
	return int64((uint64(sizeBytes) + uint64(chunkSizeBytes) - 1) / uint64(chunkSizeBytes))
}

// NewGenerator creates a writer that may be used to compute digests of
// files. Data is digested using the provided block digest function.
func NewGenerator(blockDigest BlockDigestFunc) *Generator {
	return &Generator{
		accumulator: NewAccumulator(blockDigest, ED2KChunkSizeBytes, nil),
	}
}

// Generator is a writer that may be used to compute digests of files.
type Generator struct {
	accumulator *Accumulator
	sizeBytes   int64
}

// Write a chunk of data from a file into the state of the Generator.
func (dg *Generator) Write(p []byte) (int, error) {
	n, err := dg.accumulator.Write(p)
	dg.sizeBytes += int64(n)
	return n, err
}

// Sum creates a new digest based on the data written into the
// Generator.
func (dg *Generator) Sum() Digest {
	return newDigestUnchecked(dg.accumulator.Finalize().String(), dg.sizeBytes)
}

// GetHashset returns the digests of the individual parts of the data
// written into the Generator.
func (dg *Generator) GetHashset() []BlockDigest {
	return dg.accumulator.Hashset()
}
