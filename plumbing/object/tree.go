package object

import (
	"bytes"
	"strconv"

	"github.com/kelmin/ugit/plumbing"
)

// FileMode is a tree entry's mode. Inside a tree object it is stored as an
// octal string without a leading zero ("100644", "100755", "40000",
// "120000", "160000").
type FileMode int32

// The file modes git recognizes inside a tree entry.
const (
	ModeFile       FileMode = 0o100644
	ModeExecutable FileMode = 0o100755
	ModeDir        FileMode = 0o040000
	ModeSymlink    FileMode = 0o120000
	ModeGitlink    FileMode = 0o160000
)

// IsDir reports whether the entry is a subtree.
func (m FileMode) IsDir() bool {
	return m == ModeDir
}

// Tree represents a git tree object: an ordered list of (mode, name, oid)
// entries describing one directory level.
type Tree struct {
	id      plumbing.Oid
	Entries []*TreeEntry
}

// TreeEntry represents a single entry inside a tree.
type TreeEntry struct {
	Mode FileMode
	ID   plumbing.Oid
	Path string
}

// NewTree returns a new tree with the given entries. Its ID is not
// computed; the Object returned by ToObject gets one when Compress is called.
func NewTree(entries []*TreeEntry) *Tree {
	return &Tree{Entries: entries}
}

// NewTreeWithID returns a tree with a known ID, as produced by decoding an
// existing object.
func NewTreeWithID(id plumbing.Oid, entries []*TreeEntry) *Tree {
	return &Tree{id: id, Entries: entries}
}

// ID returns the tree's Oid. It is set only for a tree built with
// NewTreeWithID; ToObject does not set it.
func (t *Tree) ID() plumbing.Oid {
	return t.id
}

// ToObject encodes the tree into its canonical Object form. Entries are
// expected to already be sorted by Path; callers building a tree (the tree
// builder) are responsible for that ordering.
func (t *Tree) ToObject() (*Object, error) {
	buf := new(bytes.Buffer)

	// A tree entry is "{octal_mode} {path}\0{20-byte raw oid}", entries
	// packed back to back with no separator.
	for _, e := range t.Entries {
		buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.Write(e.ID.Bytes())
	}

	obj := New(TypeTree, buf.Bytes())
	if t.id != plumbing.NullOid {
		obj.ID = t.id
		return obj, nil
	}
	return obj, nil
}
