// Package mock contains GoMock generated mocks for interfaces and
// function types used throughout bb-ed2k.
package mock

//go:generate mockgen -destination aliases_mock.go -package mock -source aliases.go
//go:generate mockgen -destination buffer_mock.go -package mock github.com/buildbarn/bb-ed2k/pkg/buffer ChunkReader
//go:generate mockgen -destination clock_mock.go -package mock github.com/buildbarn/bb-ed2k/pkg/clock Clock
