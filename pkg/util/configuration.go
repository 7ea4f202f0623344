package util

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/go-jsonnet"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnmarshalConfigurationFromFile reads a Jsonnet file, evaluates it
// and unmarshals the resulting JSON into a configuration message.
// Fields that are not part of the configuration message are rejected.
func UnmarshalConfigurationFromFile(path string, configuration interface{}) error {
	vm := jsonnet.MakeVM()
	data, err := vm.EvaluateFile(path)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Failed to evaluate configuration file %#v: %s", path, err)
	}
	decoder := json.NewDecoder(strings.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(configuration); err != nil {
		return status.Errorf(codes.InvalidArgument, "Failed to unmarshal configuration file %#v: %s", path, err)
	}
	return nil
}
