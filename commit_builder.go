package ugit

import (
	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"golang.org/x/xerrors"
)

// CommitTreeOptions carries the optional inputs to CommitTree.
type CommitTreeOptions struct {
	// ParentID is the commit's single parent, if any. The zero Oid means
	// a root commit.
	ParentID plumbing.Oid
	Message  string
	Author   object.Signature
}

// CommitTree assembles a commit object pointing at treeID with the given
// options, persists it, and returns its Oid.
func (r *Repository) CommitTree(treeID plumbing.Oid, opts CommitTreeOptions) (plumbing.Oid, error) {
	var parents []plumbing.Oid
	if !opts.ParentID.IsZero() {
		parents = []plumbing.Oid{opts.ParentID}
	}

	author := opts.Author
	if author.IsZero() {
		author = object.NewSignature("ugit", "ugit@localhost")
	}

	c := object.NewCommit(treeID, author, &object.CommitOptions{
		ParentsID: parents,
		Message:   opts.Message,
	})

	o, err := c.ToObject()
	if err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not encode commit: %w", err)
	}

	return r.dotGit.WriteObject(o)
}
