package main

import (
	"fmt"

	"github.com/buildbarn/bb-ed2k/pkg/digest"
	"github.com/buildbarn/bb-ed2k/pkg/filehasher"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var printLinks bool

var hashCmd = &cobra.Command{
	Use:   "hash FILE...",
	Short: "Prints the ed2k hashes of files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHash,
}

func init() {
	hashCmd.Flags().BoolVar(&printLinks, "link", false, "print full ed2k links instead of hashes")
}

func runHash(cmd *cobra.Command, args []string) error {
	fileHasher := filehasher.NewFileHasher(newBlockDigestFunc(), applicationConfiguration.ReadChunkSizeBytes)
	out := cmd.OutOrStdout()
	failures := 0
	if err := fileHasher.HashFiles(
		cmd.Context(),
		args,
		applicationConfiguration.MaximumConcurrentFiles,
		func(path string, link digest.FileLink, err error) {
			if err != nil {
				log.WithError(err).WithField("path", path).Error("Failed to hash file")
				failures++
				return
			}
			if printLinks {
				fmt.Fprintln(out, link.String())
			} else {
				fmt.Fprintf(out, "%s  %s\n", link.Digest.GetHashString(), link.FileName)
			}
		},
	); err != nil {
		return err
	}
	if failures > 0 {
		return status.Errorf(codes.Unknown, "%d of %d files could not be hashed", failures, len(args))
	}
	return nil
}
