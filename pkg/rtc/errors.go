package rtc

import "errors"

// Errors
var (
	// ErrConstruction is returned by New when the engine factory or the
	// native connection could not be built. No handle is produced.
	ErrConstruction = errors.New("peer connection construction failed")

	// ErrConversion is returned when a plain descriptor could not be
	// translated to the engine's form before submission.
	ErrConversion = errors.New("descriptor conversion failed")

	// ErrOperationFailed wraps engine rejections of an offer/answer/
	// set-description attempt, delivered through a completion callback's
	// failure path.
	ErrOperationFailed = errors.New("engine rejected operation")

	// ErrNotSupported is returned when a declared but unimplemented
	// capability is invoked, such as track attachment on an engine
	// without a media path.
	ErrNotSupported = errors.New("operation not supported")

	// ErrPeerConnectionClosed is returned for any operation on a closed
	// or nil peer connection.
	ErrPeerConnectionClosed = errors.New("peer connection closed")

	// ErrTrackNotFound is returned by WriteRTP for unknown track IDs.
	ErrTrackNotFound = errors.New("track not found")
)
