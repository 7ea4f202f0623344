package main

import (
	"fmt"

	"github.com/buildbarn/bb-ed2k/pkg/digest"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Checks the ed2k implementation against known hashes",
	Args:  cobra.NoArgs,
	RunE:  runSelftest,
}

type selftestVector struct {
	name     string
	data     func() []byte
	expected string
}

func zeroesEndingWith(sizeBytes int, last byte) func() []byte {
	return func() []byte {
		data := make([]byte, sizeBytes)
		data[sizeBytes-1] = last
		return data
	}
}

var selftestVectors = []selftestVector{
	{
		name:     "single chunk, trailing zero",
		data:     zeroesEndingWith(digest.ED2KChunkSizeBytes, 0x00),
		expected: "d7def262a127cd79096a108e7a9fc138",
	},
	{
		name:     "single chunk, trailing one",
		data:     zeroesEndingWith(digest.ED2KChunkSizeBytes, 0x01),
		expected: "68a002d06135444b4ea30e11f4324ee9",
	},
	{
		name:     "digits",
		data:     func() []byte { return []byte("123456789") },
		expected: "2ae523785d0caf4d2fb557c12016185c",
	},
	{
		name:     "ten million bytes",
		data:     zeroesEndingWith(10000000, 0x01),
		expected: "7ab53cd47867f5fe5b031ddec3bc470e",
	},
}

func runSelftest(cmd *cobra.Command, _ []string) error {
	blockDigest := newBlockDigestFunc()
	failures := 0
	for _, vector := range selftestVectors {
		actual := digest.NewAccumulator(blockDigest, digest.ED2KChunkSizeBytes, vector.data()).Finalize().String()
		if actual != vector.expected {
			log.WithFields(log.Fields{
				"vector":   vector.name,
				"actual":   actual,
				"expected": vector.expected,
			}).Error("Digest mismatch")
			failures++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PASS %s\n", vector.name)
	}
	if failures > 0 {
		return status.Errorf(codes.Internal, "%d of %d test vectors failed", failures, len(selftestVectors))
	}
	return nil
}
