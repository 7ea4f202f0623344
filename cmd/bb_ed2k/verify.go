package main

import (
	"fmt"

	"github.com/buildbarn/bb-ed2k/pkg/digest"
	"github.com/buildbarn/bb-ed2k/pkg/filehasher"
	"github.com/buildbarn/bb-ed2k/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var verifyCmd = &cobra.Command{
	Use:   "verify LINK FILE",
	Short: "Checks whether a file matches an ed2k link",
	Args:  cobra.ExactArgs(2),
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	link, err := digest.ParseFileLink(args[0])
	if err != nil {
		return util.StatusWrap(err, "Invalid link")
	}
	path := args[1]

	fileHasher := filehasher.NewFileHasher(newBlockDigestFunc(), applicationConfiguration.ReadChunkSizeBytes)
	corruptedParts, err := fileHasher.VerifyFile(cmd.Context(), path, link)
	if err != nil {
		return util.StatusWrapf(err, "Failed to verify file %#v", path)
	}
	for _, part := range corruptedParts {
		log.WithFields(log.Fields{
			"path":      path,
			"part":      part,
			"offset":    int64(part) * digest.ED2KChunkSizeBytes,
			"sizeBytes": link.Digest.GetPartSizeBytes(int64(part)),
		}).Error("Part is corrupted")
	}
	if len(corruptedParts) > 0 {
		return status.Errorf(codes.DataLoss, "%d of %d parts of file %#v are corrupted", len(corruptedParts), link.Digest.GetPartCount(), path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", path)
	return nil
}
