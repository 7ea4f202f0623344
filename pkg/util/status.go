package util

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusWrap prepends a string to the message of an existing error,
// while preserving the gRPC status code.
func StatusWrap(err error, msg string) error {
	return StatusWrapWithCode(err, status.Code(err), msg)
}

// StatusWrapf prepends a formatted string to the message of an
// existing error, while preserving the gRPC status code.
func StatusWrapf(err error, format string, args ...interface{}) error {
	return StatusWrap(err, fmt.Sprintf(format, args...))
}

// StatusWrapWithCode prepends a string to the message of an existing
// error, while replacing the gRPC status code.
func StatusWrapWithCode(err error, code codes.Code, msg string) error {
	return status.Errorf(code, "%s: %s", msg, status.Convert(err).Message())
}

// StatusFromContext converts the error associated with a context to a
// gRPC status error. It returns nil if the context has not been
// canceled and its deadline has not been exceeded.
func StatusFromContext(ctx context.Context) error {
	switch ctx.Err() {
	case nil:
		return nil
	case context.DeadlineExceeded:
		return status.Error(codes.DeadlineExceeded, ctx.Err().Error())
	default:
		return status.Error(codes.Canceled, ctx.Err().Error())
	}
}
