package configuration

import (
	"github.com/buildbarn/bb-ed2k/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ApplicationConfiguration holds the settings of bb_ed2k. It is
// typically loaded from a Jsonnet file.
type ApplicationConfiguration struct {
	// Size of the blocks in which files are read. This has no
	// influence on the digests that are computed.
	ReadChunkSizeBytes int `json:"readChunkSizeBytes"`

	// Maximum number of files that are hashed in parallel.
	MaximumConcurrentFiles int `json:"maximumConcurrentFiles"`

	// Address on which the HTTP service listens, for example ":8080".
	HTTPListenAddress string `json:"httpListenAddress"`

	// Maximum size of request bodies accepted by the HTTP service.
	MaximumRequestSizeBytes int64 `json:"maximumRequestSizeBytes"`

	// Logging level, as understood by logrus.
	LogLevel string `json:"logLevel"`

	// Paths of files containing keys used to verify JSON Web Tokens
	// passed to the HTTP service. Keys may be PEM, DER or JWK
	// encoded. If empty, requests are not authenticated.
	JWTVerificationKeyFiles []string `json:"jwtVerificationKeyFiles"`
}

// NewDefaultApplicationConfiguration returns the configuration that is
// used when no configuration file is provided.
func NewDefaultApplicationConfiguration() *ApplicationConfiguration {
	return &ApplicationConfiguration{
		ReadChunkSizeBytes:      1 << 18,
		MaximumConcurrentFiles:  4,
		HTTPListenAddress:       ":7980",
		MaximumRequestSizeBytes: 4 << 30,
		LogLevel:                "info",
	}
}

// GetApplicationConfiguration loads the configuration from a Jsonnet
// file. Fields that are absent from the file retain their default
// values. An empty path yields the default configuration.
func GetApplicationConfiguration(path string) (*ApplicationConfiguration, error) {
	configuration := NewDefaultApplicationConfiguration()
	if path != "" {
		if err := util.UnmarshalConfigurationFromFile(path, configuration); err != nil {
			return nil, err
		}
	}
	if err := configuration.validate(); err != nil {
		return nil, util.StatusWrapf(err, "Invalid configuration file %#v", path)
	}
	return configuration, nil
}

func (c *ApplicationConfiguration) validate() error {
	if c.ReadChunkSizeBytes <= 0 {
		return status.Errorf(codes.InvalidArgument, "Read chunk size must be positive, while %d bytes was provided", c.ReadChunkSizeBytes)
	}
	if c.MaximumConcurrentFiles <= 0 {
		return status.Errorf(codes.InvalidArgument, "Maximum number of concurrent files must be positive, while %d was provided", c.MaximumConcurrentFiles)
	}
	if c.MaximumRequestSizeBytes <= 0 {
		return status.Errorf(codes.InvalidArgument, "Maximum request size must be positive, while %d bytes was provided", c.MaximumRequestSizeBytes)
	}
	return nil
}
