package plumbing

import "errors"

// Error kinds shared by the object store, the pack parser, and the
// reference store. Each wraps a more specific message with xerrors.Errorf
// at the call site, so callers can still errors.Is against these sentinels.
var (
	// ErrObjectNotFound is returned when an Oid isn't present in the store.
	ErrObjectNotFound = errors.New("object not found")

	// ErrRefNotFound is returned when a reference name doesn't resolve to
	// anything on disk or in packed-refs.
	ErrRefNotFound = errors.New("reference not found")

	// ErrRefExists is returned by a safe-write when the reference is
	// already present.
	ErrRefExists = errors.New("reference already exists")

	// ErrRefNameInvalid is returned when a reference name fails validation.
	ErrRefNameInvalid = errors.New("reference name is not valid")

	// ErrRefInvalid is returned when a reference's on-disk content can't be
	// parsed, including circular symbolic references.
	ErrRefInvalid = errors.New("reference is not valid")
)
