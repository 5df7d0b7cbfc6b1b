package plumbing

import (
	"bytes"
	"strings"

	"golang.org/x/xerrors"
)

// Well-known reference names.
const (
	// HEAD points at the current branch, or at a commit if detached.
	HEAD = "HEAD"
	// Master is the default branch name used when none is specified.
	Master = "master"
)

// ReferenceType distinguishes a direct (Oid) reference from a symbolic one.
type ReferenceType int8

const (
	// OidReference targets an Oid directly.
	OidReference ReferenceType = 1
	// SymbolicReference targets another reference by name.
	SymbolicReference ReferenceType = 2
)

// Reference represents a git reference: a name mapped to either an Oid or
// another reference name.
// https://git-scm.com/book/en/v2/Git-Internals-Git-References
type Reference struct {
	name   string
	target string
	id     Oid
	typ    ReferenceType
}

// NewReference returns a reference that targets an Oid directly.
func NewReference(name string, target Oid) *Reference {
	return &Reference{typ: OidReference, name: name, id: target}
}

// NewSymbolicReference returns a reference that targets another reference.
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{typ: SymbolicReference, name: name, target: target}
}

// Name returns the full name of the reference, e.g. "refs/heads/master".
func (ref *Reference) Name() string {
	return ref.name
}

// Target returns the Oid targeted by the reference, resolving through a
// symbolic reference if needed (set by ResolveReference).
func (ref *Reference) Target() Oid {
	return ref.id
}

// Type returns whether the reference is direct or symbolic.
func (ref *Reference) Type() ReferenceType {
	return ref.typ
}

// SymbolicTarget returns the name this reference points to, if symbolic.
func (ref *Reference) SymbolicTarget() string {
	return ref.target
}

// RefContent loads the raw on-disk content of a reference by name. It lets
// ResolveReference walk symbolic references without depending on a
// particular backend.
type RefContent func(name string) ([]byte, error)

// ResolveReference follows symbolic references until it finds a direct one,
// returning a Reference whose Target() is the final Oid. A symbolic
// reference whose target does not exist yet resolves with a NullOid target.
func ResolveReference(name string, finder RefContent) (*Reference, error) {
	return resolveReference(name, finder, map[string]struct{}{})
}

func resolveReference(name string, finder RefContent, visited map[string]struct{}) (*Reference, error) {
	if _, ok := visited[name]; ok {
		return nil, xerrors.Errorf("circular symbolic reference at %s: %w", name, ErrRefInvalid)
	}
	visited[name] = struct{}{}

	if !IsRefNameValid(name) {
		return nil, xerrors.Errorf("ref %q: %w", name, ErrRefNameInvalid)
	}

	data, err := finder(name)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if len(data) >= 5 && string(data[0:5]) == "ref: " {
		target := string(data[5:])
		resolved, err := resolveReference(target, finder, visited)
		if err != nil {
			if !xerrors.Is(err, ErrRefNotFound) {
				return nil, err
			}
			// The target branch has no commit yet (e.g. HEAD right after
			// init): the symbolic reference is valid and targets NullOid.
			resolved = &Reference{id: NullOid}
		}
		return &Reference{
			typ:    SymbolicReference,
			name:   name,
			id:     resolved.id,
			target: target,
		}, nil
	}

	oid, err := NewOidFromChars(data)
	if err != nil {
		return nil, xerrors.Errorf("ref %q: %w", name, ErrRefInvalid)
	}
	return &Reference{typ: OidReference, name: name, id: oid}, nil
}

// LocalBranchRefName returns the full ref name of a local branch, e.g.
// "refs/heads/master".
func LocalBranchRefName(branch string) string {
	return "refs/heads/" + branch
}

// RemoteRefName returns the full ref name of a remote-tracking branch, e.g.
// "refs/remotes/origin/master".
func RemoteRefName(remote, branch string) string {
	return "refs/remotes/" + remote + "/" + branch
}

// RemoteHeadRefName returns the full ref name of a remote's HEAD, e.g.
// "refs/remotes/origin/HEAD".
func RemoteHeadRefName(remote string) string {
	return "refs/remotes/" + remote + "/" + HEAD
}

// MasterLocalRef is the full ref name of the default local branch.
const MasterLocalRef = "refs/heads/" + Master

// IsRefNameValid reports whether name is an acceptable reference name.
// https://stackoverflow.com/a/12093994/382879
func IsRefNameValid(name string) bool {
	if name == "" || name == "/" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}

	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		switch c {
		case '*', '?', '~', ':', '^', '[', '\\', ' ':
			return false
		}
		if i < len(name)-1 {
			switch name[i : i+2] {
			case "@{", "..":
				return false
			}
		}
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == "" || segment[0] == '.' || segment[len(segment)-1] == '.' || strings.HasSuffix(segment, ".lock") {
			return false
		}
	}

	return true
}
