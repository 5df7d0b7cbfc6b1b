package object

import "github.com/kelmin/ugit/plumbing"

// Blob represents a blob object: the raw content of a single file, with no
// name or mode attached (those live in the tree entry that points at it).
type Blob struct {
	*Object
}

// NewBlob wraps raw file content into a Blob with a known ID.
func NewBlob(id plumbing.Oid, content []byte) *Blob {
	return &Blob{Object: NewWithID(id, TypeBlob, content)}
}

// Type returns TypeBlob.
func (b *Blob) Type() Type {
	return TypeBlob
}
