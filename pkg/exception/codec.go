package exception

import "errors"

// Codec errors
var (
	// ErrDecodeMalformed is returned when a frame is not parseable as JSON.
	ErrDecodeMalformed = errors.New("codec: malformed frame")
	// ErrDecodeMissingKind is returned when a frame carries no type tag.
	ErrDecodeMissingKind = errors.New("codec: missing type")
	// ErrDecodeUnrecognized is returned for a type tag outside the known set.
	// Callers treat it as a soft outcome: log and discard.
	ErrDecodeUnrecognized = errors.New("codec: unrecognized type")
	// ErrDecodeInvalid is returned when a known variant lacks a required field.
	ErrDecodeInvalid = errors.New("codec: invalid notification")
	// ErrEncodeUnsupported is returned for control actions outside the closed set.
	ErrEncodeUnsupported = errors.New("codec: unsupported control action")
)
