package store

import "errors"

var (
	// ErrInvalidInterval is returned for records with start >= end or
	// end past the coordinate space.
	ErrInvalidInterval = errors.New("store: invalid interval")

	// ErrOutOfOrderSequence is returned when a record arrives for a
	// sequence whose record group was already closed.
	ErrOutOfOrderSequence = errors.New("store: sequence records not contiguous")

	// ErrInvalidState is returned for operations that are not legal in
	// the store's current lifecycle phase.
	ErrInvalidState = errors.New("store: invalid state for operation")

	// ErrBadMagic is returned when a file does not start with the
	// expected magic bytes.
	ErrBadMagic = errors.New("store: bad magic")

	// ErrVersionMismatch is returned when the master index was written
	// by an incompatible format version.
	ErrVersionMismatch = errors.New("store: format version mismatch")

	// ErrCorrupt is returned when the master index cannot be decoded.
	ErrCorrupt = errors.New("store: corrupt index")
)
