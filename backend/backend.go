// Package backend contains interfaces and implementations for storing and
// retrieving data from a git object database.
package backend

import (
	"errors"

	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
)

// ErrUnsupportedRepoFormat is returned when a repository's
// core.repositoryformatversion isn't one this client understands.
var ErrUnsupportedRepoFormat = errors.New("unsupported repository format version")

// Backend is something that can store and retrieve objects and references.
type Backend interface {
	// Close frees the resources held by the backend.
	Close() error

	// Init initializes a fresh repository (directory layout, description,
	// default config). It does not write HEAD.
	Init() error

	// RepoFormatVersion reads core.repositoryformatversion from
	// .git/config.
	RepoFormatVersion() (string, error)

	// Reference returns a stored reference from its name.
	Reference(name string) (*plumbing.Reference, error)
	// WriteReference writes the given reference, overwriting it if it
	// already exists.
	WriteReference(ref *plumbing.Reference) error
	// WriteReferenceSafe writes the given reference. ErrRefExists is
	// returned if the reference already exists.
	WriteReferenceSafe(ref *plumbing.Reference) error
	// WalkReferences runs f on every stored reference.
	WalkReferences(f RefWalkFunc) error

	// Object returns the object with the given Oid.
	Object(plumbing.Oid) (*object.Object, error)
	// HasObject reports whether an object exists in the database.
	HasObject(plumbing.Oid) (bool, error)
	// WriteObject adds an object to the database.
	WriteObject(*object.Object) (plumbing.Oid, error)
	// WalkLooseObjectIDs runs f on every loose object id.
	WalkLooseObjectIDs(f OidWalkFunc) error
}

// RefWalkFunc is applied to every reference found by WalkReferences.
type RefWalkFunc = func(ref *plumbing.Reference) error

// OidWalkFunc is applied to every Oid found by a Walk*ObjectIDs method.
type OidWalkFunc = func(oid plumbing.Oid) error

// WalkStop is returned by a walk callback to stop the walk early without
// it being treated as a failure.
var WalkStop = errors.New("stop walking")
