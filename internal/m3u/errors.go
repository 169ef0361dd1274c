package m3u

import "errors"

// ErrMissingHeader is returned when the first non-empty line of the body
// is not #EXTM3U.
var ErrMissingHeader = errors.New("m3u: missing #EXTM3U header")

// ErrLineTooLong is returned when a line exceeds the configured
// per-line byte cap.
var ErrLineTooLong = errors.New("m3u: line exceeds max length")

// errLineTimeout is returned by deadlineReader when a single Read call
// does not complete within the configured per-line timeout. It surfaces
// to callers as ErrLineTimeout.
var errLineTimeout = errors.New("m3u: timed out reading line")

// ErrLineTimeout is returned when a single line read exceeds the
// configured per-line read timeout.
var ErrLineTimeout = errLineTimeout
