package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/md4"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// BlockDigestSizeBytes is the size of a block digest. ed2k uses a
// 128-bit digest function.
const BlockDigestSizeBytes = md4.Size

// BlockDigest holds the 128-bit digest of a single block of data. It
// is used both for the digests of individual parts of a file and for
// the final digest of a file as a whole.
type BlockDigest [BlockDigestSizeBytes]byte

// NewBlockDigestFromHex decodes a block digest from its hexadecimal
// representation. Both lowercase and uppercase characters are
// accepted, as ed2k links are commonly written in uppercase.
func NewBlockDigestFromHex(s string) (BlockDigest, error) {
	var d BlockDigest
	if l := len(s); l != BlockDigestSizeBytes*2 {
		return d, status.Errorf(codes.InvalidArgument, "Block digest has length %d, while %d characters were expected", l, BlockDigestSizeBytes*2)
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, status.Errorf(codes.InvalidArgument, "Block digest %#v is not hexadecimal", s)
	}
	return d, nil
}

// String renders the block digest as a 32 character lowercase
// hexadecimal string. This is the conventional way of displaying ed2k
// hashes.
func (d BlockDigest) String() string {
	return hex.EncodeToString(d[:])
}

// BlockDigestFunc computes the digest of a block of data. It must be
// deterministic and must not retain the provided slice. Apart from the
// size of its output, the accumulator makes no assumptions about the
// algorithm, which permits substituting it in tests.
type BlockDigestFunc func(block []byte) BlockDigest

// MD4BlockDigest is the BlockDigestFunc used by the ed2k network.
func MD4BlockDigest(block []byte) BlockDigest {
	h := md4.New()
	h.Write(block)
	var d BlockDigest
	copy(d[:], h.Sum(nil))
	return d
}

func concatenateBlockDigests(blockDigests []BlockDigest) []byte {
	out := make([]byte, 0, len(blockDigests)*BlockDigestSizeBytes)
	for _, d := range blockDigests {
		out = append(out, d[:]...)
	}
	return out
}
