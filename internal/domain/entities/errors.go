package entities

import "errors"

var (
	// ErrRemoteUnavailable wraps network, timeout and non-2xx failures from any provider.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrMalformedVersion is returned when a version string cannot be parsed into
	// three numeric components.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrMissingBuildVersion is returned when a base branch is derived for a
	// release environment without a known live build.
	ErrMissingBuildVersion = errors.New("missing build version")

	// ErrMalformedChangeLog is returned when a change-log document cannot be parsed.
	ErrMalformedChangeLog = errors.New("malformed change-log")
)
