package digest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/buildbarn/bb-ed2k/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const fileLinkPrefix = "ed2k://|file|"

// FileLink is the parsed form of an ed2k file link, having the
// following format:
//
//   ed2k://|file|${name}|${size}|${hash}|p=${part1}:${part2}:...|/
//
// The part hashes section is optional. It is only present for files
// that consist of more than one part.
type FileLink struct {
	FileName   string
	Digest     Digest
	PartHashes []BlockDigest
}

// ParseFileLink parses an ed2k file link. Hashes may be written in
// either case. AICH root hashes ("h=" fields) are accepted, but
// ignored.
//
// This function only validates the syntax of the link. Use NewHashset()
// to validate that the part hashes correspond with the file hash.
func ParseFileLink(link string) (FileLink, error) {
	if len(link) < len(fileLinkPrefix) || !strings.EqualFold(link[:len(fileLinkPrefix)], fileLinkPrefix) {
		return FileLink{}, status.Errorf(codes.InvalidArgument, "Link does not start with %#v", fileLinkPrefix)
	}
	body := strings.TrimSuffix(link[len(fileLinkPrefix):], "/")
	if !strings.HasSuffix(body, "|") {
		return FileLink{}, status.Error(codes.InvalidArgument, "Link is not terminated by \"|\"")
	}
	fields := strings.Split(body[:len(body)-1], "|")
	if len(fields) < 3 {
		return FileLink{}, status.Errorf(codes.InvalidArgument, "Link contains %d fields, while at least 3 were expected", len(fields))
	}

	fileName, err := url.PathUnescape(fields[0])
	if err != nil {
		return FileLink{}, status.Errorf(codes.InvalidArgument, "Invalid file name %#v", fields[0])
	}
	if fileName == "" {
		return FileLink{}, status.Error(codes.InvalidArgument, "Link has an empty file name")
	}
	sizeBytes, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return FileLink{}, status.Errorf(codes.InvalidArgument, "Invalid file size %#v", fields[1])
	}
	d, err := NewDigest(strings.ToLower(fields[2]), sizeBytes)
	if err != nil {
		return FileLink{}, util.StatusWrap(err, "Invalid file digest")
	}

	fileLink := FileLink{
		FileName: fileName,
		Digest:   d,
	}
	for _, field := range fields[3:] {
		switch {
		case strings.HasPrefix(field, "p="):
			for i, partHash := range strings.Split(field[2:], ":") {
				partDigest, err := NewBlockDigestFromHex(partHash)
				if err != nil {
					return FileLink{}, util.StatusWrapf(err, "Invalid hash for part %d", i)
				}
				fileLink.PartHashes = append(fileLink.PartHashes, partDigest)
			}
		case strings.HasPrefix(field, "h="):
		default:
			return FileLink{}, status.Errorf(codes.InvalidArgument, "Unsupported link field %#v", field)
		}
	}
	return fileLink, nil
}

// NewFileLink creates a FileLink for a file of which the digest and
// hashset have been computed. Hashsets consisting of a single part are
// omitted, as the part hash is identical to the file hash.
func NewFileLink(fileName string, d Digest, hashset []BlockDigest) FileLink {
	fileLink := FileLink{
		FileName: fileName,
		Digest:   d,
	}
	if len(hashset) > 1 {
		fileLink.PartHashes = append([]BlockDigest(nil), hashset...)
	}
	return fileLink
}

func (l FileLink) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s|%d|%s|", fileLinkPrefix, url.PathEscape(l.FileName), l.Digest.GetSizeBytes(), l.Digest.GetHashString())
	if len(l.PartHashes) > 1 {
		sb.WriteString("p=")
		for i, partHash := range l.PartHashes {
			if i > 0 {
				sb.WriteByte(':')
			}
			sb.WriteString(partHash.String())
		}
		sb.WriteByte('|')
	}
	sb.WriteByte('/')
	return sb.String()
}
