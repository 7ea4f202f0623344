package configuration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buildbarn/bb-ed2k/pkg/configuration"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func writeConfiguration(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "bb_ed2k.jsonnet")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestGetApplicationConfiguration(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		c, err := configuration.GetApplicationConfiguration("")
		require.NoError(t, err)
		require.Equal(t, configuration.NewDefaultApplicationConfiguration(), c)
	})

	t.Run("Jsonnet", func(t *testing.T) {
		// Jsonnet expressions are evaluated. Fields that are
		// not set keep their defaults.
		c, err := configuration.GetApplicationConfiguration(writeConfiguration(t, `
local kib = 1024;
{
  readChunkSizeBytes: 64 * kib,
  maximumConcurrentFiles: 8,
}
`))
		require.NoError(t, err)
		require.Equal(t, 64*1024, c.ReadChunkSizeBytes)
		require.Equal(t, 8, c.MaximumConcurrentFiles)
		require.Equal(t, ":7980", c.HTTPListenAddress)
		require.Equal(t, "info", c.LogLevel)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := configuration.GetApplicationConfiguration(writeConfiguration(t, `{ chunkSizeBytes: 123 }`))
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("SyntaxError", func(t *testing.T) {
		_, err := configuration.GetApplicationConfiguration(writeConfiguration(t, `{ readChunkSizeBytes: }`))
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("InvalidValue", func(t *testing.T) {
		path := writeConfiguration(t, `{ maximumConcurrentFiles: 0 }`)
		_, err := configuration.GetApplicationConfiguration(path)
		require.Equal(t, status.Errorf(codes.InvalidArgument, "Invalid configuration file %#v: Maximum number of concurrent files must be positive, while 0 was provided", path), err)
	})
}
