package generation

import "errors"

// Failure taxonomy. None of these ever propagate past the fallback
// chain's caller; they route control between strategies and are logged.
var (
	// ErrRemoteGeneration covers network, timeout and capability errors
	// on the optional remote generator.
	ErrRemoteGeneration = errors.New("remote generation failed")

	// ErrMalformedRemoteResponse means the remote payload did not parse
	// into the expected artifact shape. Treated like ErrRemoteGeneration.
	ErrMalformedRemoteResponse = errors.New("malformed remote response")

	// ErrPersistenceUnavailable means artifact storage is missing or
	// failing; results are then held in session memory only.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
