package filehasher

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/buildbarn/bb-ed2k/pkg/buffer"
	"github.com/buildbarn/bb-ed2k/pkg/digest"
	"github.com/buildbarn/bb-ed2k/pkg/util"
	"golang.org/x/sync/semaphore"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ResultReporter is called by FileHasher.HashFiles() for every file
// that has been processed. Either the link or the error is set.
type ResultReporter func(path string, link digest.FileLink, err error)

// FileHasher computes ed2k links of files on the local file system.
type FileHasher struct {
	blockDigest        digest.BlockDigestFunc
	readChunkSizeBytes int
}

// NewFileHasher creates a FileHasher. Files are read in blocks of a
// given size. This size has no influence on the resulting digests, as
// data is split up in ed2k parts internally.
func NewFileHasher(blockDigest digest.BlockDigestFunc, readChunkSizeBytes int) *FileHasher {
	return &FileHasher{
		blockDigest:        blockDigest,
		readChunkSizeBytes: readChunkSizeBytes,
	}
}

// openRegularFile opens a file for reading, while translating file
// system errors to gRPC status codes.
func openRegularFile(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, convertFileSystemError(err, "Failed to open file")
	}
	fileInfo, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, convertFileSystemError(err, "Failed to obtain file attributes")
	}
	if !fileInfo.Mode().IsRegular() {
		f.Close()
		return nil, 0, status.Error(codes.InvalidArgument, "Not a regular file")
	}
	return f, fileInfo.Size(), nil
}

func convertFileSystemError(err error, msg string) error {
	switch {
	case os.IsNotExist(err):
		return util.StatusWrapWithCode(err, codes.NotFound, msg)
	case os.IsPermission(err):
		return util.StatusWrapWithCode(err, codes.PermissionDenied, msg)
	default:
		return util.StatusWrapWithCode(err, codes.Unavailable, msg)
	}
}

// readParts reads a file as a sequence of chunks and calls into a
// callback for each of them. The context is checked for cancellation
// in between chunks.
func readParts(ctx context.Context, r buffer.ChunkReader, callback func(chunk []byte) error) error {
	defer r.Close()

	for {
		if err := util.StatusFromContext(ctx); err != nil {
			return err
		}
		chunk, err := r.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return convertFileSystemError(err, "Failed to read file")
		}
		if err := callback(chunk); err != nil {
			return err
		}
	}
}

// HashFile computes the ed2k link of a single file. The file name
// stored in the link is the base name of the path.
func (fh *FileHasher) HashFile(ctx context.Context, path string) (digest.FileLink, error) {
	f, sizeBytes, err := openRegularFile(path)
	if err != nil {
		return digest.FileLink{}, err
	}

	g := digest.NewGenerator(fh.blockDigest)
	if err := readParts(
		ctx,
		buffer.NewChunkReaderFromReader(f, buffer.ChunkSizeAtMost(fh.readChunkSizeBytes)),
		func(chunk []byte) error {
			_, err := g.Write(chunk)
			return err
		},
	); err != nil {
		return digest.FileLink{}, err
	}

	d := g.Sum()
	if d.GetSizeBytes() != sizeBytes {
		return digest.FileLink{}, status.Errorf(codes.Unavailable, "File was %d bytes in size when opened, while %d bytes were read", sizeBytes, d.GetSizeBytes())
	}
	return digest.NewFileLink(filepath.Base(path), d, g.GetHashset()), nil
}

// HashFiles computes the ed2k links of a list of files, processing at
// most a given number of files concurrently. Failing to process one
// file does not prevent other files from being processed. Results are
// reported in the same order as the paths are provided, exactly once
// per path.
//
// The error returned by this function is only set if the context is
// canceled before all files are started. Files that were not started
// are reported with that error.
func (fh *FileHasher) HashFiles(ctx context.Context, paths []string, concurrency int, report ResultReporter) error {
	type result struct {
		link digest.FileLink
		err  error
	}
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]chan result, len(paths))
	sem := semaphore.NewWeighted(int64(concurrency))
	for i, path := range paths {
		results[i] = make(chan result, 1)
		err := util.StatusFromContext(ctx)
		if err == nil && sem.Acquire(ctx, 1) != nil {
			err = util.StatusFromContext(ctx)
		}
		if err != nil {
			// Report the files that were started, as their
			// results are pending already.
			for j := 0; j < i; j++ {
				r := <-results[j]
				report(paths[j], r.link, r.err)
			}
			for _, path := range paths[i:] {
				report(path, digest.FileLink{}, err)
			}
			return err
		}
		go func(path string, results chan<- result) {
			defer sem.Release(1)
			link, err := fh.HashFile(ctx, path)
			results <- result{link: link, err: err}
		}(path, results[i])
	}

	for i, path := range paths {
		r := <-results[i]
		report(path, r.link, r.err)
	}
	return nil
}

// VerifyFile checks whether a file matches an ed2k link. The indices
// of corrupted parts are returned. If the link contains part hashes,
// the file is verified one part at a time. Links of multi-part files
// without part hashes can only be checked as a whole, meaning that a
// mismatch reports all parts as being corrupted.
//
// Files whose size differs from the size in the link cause an error
// with code FAILED_PRECONDITION.
func (fh *FileHasher) VerifyFile(ctx context.Context, path string, link digest.FileLink) ([]int, error) {
	partCount := link.Digest.GetPartCount()
	if len(link.PartHashes) == 0 && partCount > 1 {
		actual, err := fh.HashFile(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := checkSizeBytes(actual.Digest.GetSizeBytes(), link.Digest); err != nil {
			return nil, err
		}
		if actual.Digest == link.Digest {
			return nil, nil
		}
		corruptedParts := make([]int, 0, partCount)
		for part := 0; int64(part) < partCount; part++ {
			corruptedParts = append(corruptedParts, part)
		}
		return corruptedParts, nil
	}

	parts := link.PartHashes
	if len(parts) == 0 {
		parts = []digest.BlockDigest{link.Digest.GetHashBytes()}
	}
	hashset, err := digest.NewHashset(link.Digest, parts, fh.blockDigest)
	if err != nil {
		return nil, util.StatusWrap(err, "Invalid hashset")
	}

	f, sizeBytes, err := openRegularFile(path)
	if err != nil {
		return nil, err
	}
	if err := checkSizeBytes(sizeBytes, link.Digest); err != nil {
		f.Close()
		return nil, err
	}

	var corruptedParts []int
	part := 0
	offset := int64(0)
	if err := readParts(
		ctx,
		buffer.NewChunkReaderFromReader(f, buffer.ChunkSizeExactly(digest.ED2KChunkSizeBytes)),
		func(chunk []byte) error {
			if err := hashset.VerifyPart(offset, chunk); err != nil {
				if status.Code(err) != codes.Internal {
					return err
				}
				corruptedParts = append(corruptedParts, part)
			}
			part++
			offset += int64(len(chunk))
			return nil
		},
	); err != nil {
		return nil, err
	}

	// Empty files don't yield any chunks.
	if sizeBytes == 0 {
		if err := hashset.VerifyPart(0, nil); err != nil {
			corruptedParts = append(corruptedParts, 0)
		}
	}
	return corruptedParts, nil
}

func checkSizeBytes(sizeBytes int64, expected digest.Digest) error {
	if expectedSizeBytes := expected.GetSizeBytes(); sizeBytes != expectedSizeBytes {
		return status.Errorf(codes.FailedPrecondition, "File is %d bytes in size, while %d bytes were expected", sizeBytes, expectedSizeBytes)
	}
	return nil
}
