// Package xerrors implements the error taxonomy of the design: a
// small set of kinds, not types, distinguished by errors.Is against
// sentinel values, wrapped at the point of detection with fmt.Errorf's
// %w the way niceyeti-tabular wraps net errors in server.Serve
// ("serve: %w", err). Fatal kinds are meant to be logged via xlog.Fatalf
// and abort the process; recoverable kinds are returned as plain errors
// at the single well-defined boundary the design names for them (mostly
// persistence.Load and the EA's numeric-degenerate fallbacks).
package xerrors

import "errors"

// Sentinel kinds. Wrap these with fmt.Errorf("...: %w", ErrX) at the
// detection site; callers distinguish kind with errors.Is.
var (
	// ErrInvariant marks a violated structural invariant (e.g. numerosity
	// reached 0 through arithmetic rather than explicit removal, an empty
	// match set survived covering, a payload exceeded its declared size).
	// Fatal: aborts the process after a diagnostic.
	ErrInvariant = errors.New("invariant violation")

	// ErrResourceExhaustion marks an allocation failure. Fatal.
	ErrResourceExhaustion = errors.New("resource exhaustion")

	// ErrConfiguration marks an unknown variant discriminant or unknown
	// loss function. Fatal, but only ever raised at startup, never during
	// learning (the design).
	ErrConfiguration = errors.New("configuration error")

	// ErrSerializationMismatch marks a file tag or size-field mismatch
	// during Load. Reported as a failure return, never as partial state.
	ErrSerializationMismatch = errors.New("serialization mismatch")

	// ErrNumericDegenerate marks a locally-recoverable numeric edge case:
	// a zero fitness sum in roulette selection, or a population in which
	// every candidate match is tied. Recovered by a documented fallback
	// (uniform selection, skipping the EA step) rather than propagated.
	ErrNumericDegenerate = errors.New("numeric degenerate case")
)

// Is reports whether err is an xerrors kind matching kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
