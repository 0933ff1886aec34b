package index

import "errors"

var (
	// ErrIndexNotFound is returned by Load when the index artifacts are
	// missing or incomplete on disk.
	ErrIndexNotFound = errors.New("index not found")

	// ErrDimensionMismatch is returned when a vector's dimension does
	// not match the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch is returned when the number of vectors and the
	// number of chunks disagree.
	ErrCountMismatch = errors.New("vector and chunk counts differ")

	// ErrInvalidK is returned by Search when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
)
