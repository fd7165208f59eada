package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrRemoteUnavailable covers HTTP failures, timeouts and open circuits.
	// Callers skip the affected match and continue.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrAmbiguousIdentity means several candidates matched equally well;
	// nothing is written and the match stays unresolved.
	ErrAmbiguousIdentity = errors.New("ambiguous identity")
	// ErrDataInconsistency is reported, never repaired.
	ErrDataInconsistency = errors.New("data inconsistency")
)
