package chunktree

import "errors"

var (
	// ErrIndexOutOfBounds signals an insert or remove position beyond the tree length.
	ErrIndexOutOfBounds = errors.New("chunktree: index out of bounds")
	// ErrIllegalRange signals a byte range whose end lies before its start.
	ErrIllegalRange = errors.New("chunktree: illegal range")
	// ErrSourceMismatch signals that a lazy leaf's source delivered a different
	// number of bytes than announced.
	ErrSourceMismatch = errors.New("chunktree: source length mismatch")
	// ErrInvariant signals a violated structural invariant (see Check).
	ErrInvariant = errors.New("chunktree: invariant violated")
)
