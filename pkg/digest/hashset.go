package digest

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Hashset contains the digests of all parts of a file. It allows
// validating parts of a file individually, which is needed to check
// data that is downloaded out of order, or to determine which parts
// of a damaged file need to be fetched again.
type Hashset struct {
	digest      Digest
	parts       []BlockDigest
	blockDigest BlockDigestFunc
}

// NewHashset creates a Hashset for a file, after checking that the
// part digests are consistent with the digest of the file as a whole.
func NewHashset(d Digest, parts []BlockDigest, blockDigest BlockDigestFunc) (*Hashset, error) {
	if expected := d.GetPartCount(); int64(len(parts)) != expected {
		return nil, status.Errorf(codes.InvalidArgument, "Hashset contains %d parts, while %d parts were expected", len(parts), expected)
	}

	// Files consisting of a single part use the part digest as the
	// file digest. Other files use the digest of the part digests.
	actual := parts[0]
	if len(parts) > 1 {
		actual = blockDigest(concatenateBlockDigests(parts))
	}
	if expected := d.GetHashBytes(); actual != expected {
		return nil, status.Errorf(codes.InvalidArgument, "Hashset has checksum %s, while %s was expected", actual, expected)
	}
	return &Hashset{
		digest:      d,
		parts:       append([]BlockDigest(nil), parts...),
		blockDigest: blockDigest,
	}, nil
}

// GetPartCount returns the number of parts in the hashset.
func (h *Hashset) GetPartCount() int {
	return len(h.parts)
}

// GetPartDigest returns the digest of the part that contains the byte
// at a given offset. In addition to returning the digest, it returns
// the offset and the size of the part. Negative offsets are treated as
// zero.
func (h *Hashset) GetPartDigest(off int64) (BlockDigest, int64, int64) {
	part := off / ED2KChunkSizeBytes
	if part < 0 {
		part = 0
	}
	if last := int64(len(h.parts)) - 1; part > last {
		part = last
	}
	return h.parts[part], part * ED2KChunkSizeBytes, h.digest.GetPartSizeBytes(part)
}

// VerifyPart checks whether data corresponds to the part of the file
// that starts at a given offset.
func (h *Hashset) VerifyPart(off int64, data []byte) error {
	if off < 0 {
		return status.Errorf(codes.InvalidArgument, "Negative offset %d", off)
	}
	expected, partOffset, partSizeBytes := h.GetPartDigest(off)
	if partOffset != off {
		return status.Errorf(codes.InvalidArgument, "Offset %d does not correspond to the start of a part", off)
	}
	if int64(len(data)) != partSizeBytes {
		return status.Errorf(codes.Internal, "Part at offset %d is %d bytes in size, while %d bytes were expected", off, len(data), partSizeBytes)
	}
	if actual := h.blockDigest(data); actual != expected {
		return status.Errorf(codes.Internal, "Part at offset %d has checksum %s, while %s was expected", off, actual, expected)
	}
	return nil
}
