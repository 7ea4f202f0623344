package digest_test

import (
	"testing"

	"github.com/buildbarn/bb-ed2k/internal/mock"
	"github.com/buildbarn/bb-ed2k/pkg/digest"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewHashset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d1 := digest.BlockDigest{1}
	d2 := digest.BlockDigest{2}
	combined := digest.BlockDigest{3}
	concatenated := append(append([]byte{}, d1[:]...), d2[:]...)

	t.Run("SinglePart", func(t *testing.T) {
		// Files consisting of a single part use the part
		// digest as the file digest, without digesting again.
		blockDigest := mock.NewMockBlockDigestFunc(ctrl)
		d := digest.MustNewDigest(d1.String(), digest.ED2KChunkSizeBytes)

		h, err := digest.NewHashset(d, []digest.BlockDigest{d1}, blockDigest.Call)
		require.NoError(t, err)
		require.Equal(t, 1, h.GetPartCount())
	})

	t.Run("MultipleParts", func(t *testing.T) {
		blockDigest := mock.NewMockBlockDigestFunc(ctrl)
		blockDigest.EXPECT().Call(concatenated).Return(combined)
		d := digest.MustNewDigest(combined.String(), 2*digest.ED2KChunkSizeBytes)

		h, err := digest.NewHashset(d, []digest.BlockDigest{d1, d2}, blockDigest.Call)
		require.NoError(t, err)
		require.Equal(t, 2, h.GetPartCount())
	})

	t.Run("EmptyTrailingPart", func(t *testing.T) {
		// Files whose size is an exact multiple of the chunk
		// size don't have an empty trailing part.
		blockDigest := mock.NewMockBlockDigestFunc(ctrl)
		d := digest.MustNewDigest(combined.String(), 2*digest.ED2KChunkSizeBytes)

		_, err := digest.NewHashset(d, []digest.BlockDigest{d1, d2, digest.MD4BlockDigest(nil)}, blockDigest.Call)
		require.Equal(t, status.Error(codes.InvalidArgument, "Hashset contains 3 parts, while 2 parts were expected"), err)
	})

	t.Run("ChecksumMismatch", func(t *testing.T) {
		blockDigest := mock.NewMockBlockDigestFunc(ctrl)
		blockDigest.EXPECT().Call(concatenated).Return(d1)
		d := digest.MustNewDigest(combined.String(), digest.ED2KChunkSizeBytes+1)

		_, err := digest.NewHashset(d, []digest.BlockDigest{d1, d2}, blockDigest.Call)
		require.Equal(t, status.Error(codes.InvalidArgument, "Hashset has checksum 01000000000000000000000000000000, while 03000000000000000000000000000000 was expected"), err)
	})
}

func TestHashsetParts(t *testing.T) {
	data := make([]byte, 10000000)
	data[len(data)-1] = 0x01
	g := digest.NewGenerator(digest.MD4BlockDigest)
	g.Write(data)
	h, err := digest.NewHashset(g.Sum(), g.GetHashset(), digest.MD4BlockDigest)
	require.NoError(t, err)

	t.Run("GetPartDigest", func(t *testing.T) {
		partDigest, partOffset, partSizeBytes := h.GetPartDigest(0)
		require.Equal(t, digest.MD4BlockDigest(data[:digest.ED2KChunkSizeBytes]), partDigest)
		require.Equal(t, int64(0), partOffset)
		require.Equal(t, int64(digest.ED2KChunkSizeBytes), partSizeBytes)

		partDigest, partOffset, partSizeBytes = h.GetPartDigest(9999999)
		require.Equal(t, digest.MD4BlockDigest(data[digest.ED2KChunkSizeBytes:]), partDigest)
		require.Equal(t, int64(digest.ED2KChunkSizeBytes), partOffset)
		require.Equal(t, int64(10000000-digest.ED2KChunkSizeBytes), partSizeBytes)
	})

	t.Run("VerifyPartSuccess", func(t *testing.T) {
		require.NoError(t, h.VerifyPart(0, data[:digest.ED2KChunkSizeBytes]))
		require.NoError(t, h.VerifyPart(digest.ED2KChunkSizeBytes, data[digest.ED2KChunkSizeBytes:]))
	})

	t.Run("VerifyPartMisaligned", func(t *testing.T) {
		require.Equal(
			t,
			status.Error(codes.InvalidArgument, "Offset 5 does not correspond to the start of a part"),
			h.VerifyPart(5, data[5:digest.ED2KChunkSizeBytes]))
	})

	t.Run("VerifyPartNegativeOffset", func(t *testing.T) {
		require.Equal(
			t,
			status.Error(codes.InvalidArgument, "Negative offset -1"),
			h.VerifyPart(-1, data[:digest.ED2KChunkSizeBytes]))
		require.Equal(
			t,
			status.Error(codes.InvalidArgument, "Negative offset -19456000"),
			h.VerifyPart(-2*digest.ED2KChunkSizeBytes, data[:digest.ED2KChunkSizeBytes]))

		partDigest, partOffset, _ := h.GetPartDigest(-2 * digest.ED2KChunkSizeBytes)
		require.Equal(t, digest.MD4BlockDigest(data[:digest.ED2KChunkSizeBytes]), partDigest)
		require.Equal(t, int64(0), partOffset)
	})

	t.Run("VerifyPartSizeMismatch", func(t *testing.T) {
		require.Equal(
			t,
			status.Error(codes.Internal, "Part at offset 9728000 is 3 bytes in size, while 272000 bytes were expected"),
			h.VerifyPart(digest.ED2KChunkSizeBytes, []byte("abc")))
	})

	t.Run("VerifyPartChecksumMismatch", func(t *testing.T) {
		corrupted := append([]byte{}, data[digest.ED2KChunkSizeBytes:]...)
		corrupted[0] = 0xff
		err := h.VerifyPart(digest.ED2KChunkSizeBytes, corrupted)
		require.Equal(t, codes.Internal, status.Code(err))
	})
}
