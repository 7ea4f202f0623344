package mock

import (
	"github.com/buildbarn/bb-ed2k/pkg/digest"
)

// BlockDigestFunc is an interface around digest.BlockDigestFunc, so
// that a mock can be generated for it.
type BlockDigestFunc interface {
	Call(block []byte) digest.BlockDigest
}

// FileResultReporter is an interface around the callback that is
// passed to filehasher.FileHasher.HashFiles().
type FileResultReporter interface {
	Call(path string, link digest.FileLink, err error)
}
