// Package object contains the git object model: blobs, trees, commits and
// tags, and the encode/decode logic between their loose on-disk form and
// their in-memory representation.
package object

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strconv"

	"github.com/kelmin/ugit/internal/readutil"
	"github.com/kelmin/ugit/plumbing"
	"golang.org/x/xerrors"
)

var (
	// ErrObjectUnknown is returned when an object's type tag doesn't match
	// any known kind.
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrTreeInvalid is returned when a tree object's payload can't be
	// parsed into entries.
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid is returned when a commit object's payload doesn't
	// follow the expected key/value + message layout.
	ErrCommitInvalid = errors.New("invalid commit")
)

// Type represents the kind of an object, using the same numeric tags git
// uses inside a packfile entry header.
type Type int8

// The object kinds a packfile entry header can carry. 5 is reserved by git
// itself and never appears on the wire.
const (
	TypeCommit     Type = 1
	TypeTree       Type = 2
	TypeBlob       Type = 3
	TypeTag        Type = 4
	ObjectDeltaOFS Type = 6
	ObjectDeltaRef Type = 7
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	case ObjectDeltaOFS:
		return "ofs-delta"
	case ObjectDeltaRef:
		return "ref-delta"
	default:
		panic(fmt.Sprintf("unknown object type %d", t))
	}
}

// IsValid reports whether t is one of the known object kinds.
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag, ObjectDeltaOFS, ObjectDeltaRef:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns the Type matching one of the loose-object type
// strings ("commit", "tree", "blob", "tag").
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, ErrObjectUnknown
	}
}

// Object is a single git object: a type tag plus an opaque payload, keyed
// by the SHA-1 of its canonical wrapped form. It is the common shape blobs,
// trees, commits and tags are all decoded into and encoded from.
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
type Object struct {
	ID      plumbing.Oid
	typ     Type
	content []byte
}

// New creates an object of the given type. Its ID isn't computed until
// Compress is called.
func New(typ Type, content []byte) *Object {
	return &Object{
		ID:      plumbing.NullOid,
		typ:     typ,
		content: content,
	}
}

// NewWithID creates an object of the given type with a known ID, skipping
// the hash computation Compress would otherwise do.
func NewWithID(id plumbing.Oid, typ Type, content []byte) *Object {
	return &Object{
		ID:      id,
		typ:     typ,
		content: content,
	}
}

// Size returns the length of the object's payload.
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the object's kind.
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's raw payload.
func (o *Object) Bytes() []byte {
	return o.content
}

// Hash returns the Oid of the object without compressing it: the SHA-1 of
// "type size\0content".
func (o *Object) Hash() plumbing.Oid {
	return plumbing.NewOidFromContent(o.header())
}

func (o *Object) header() []byte {
	w := new(bytes.Buffer)
	w.WriteString(o.Type().String())
	w.WriteRune(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.Bytes())
	return w.Bytes()
}

// Compress returns the object zlib-compressed, alongside its Oid. The
// wrapped format is:
//
//	{type} {size}\0{content}
//
// SHA-1 is taken over the wrapped form, not the raw content.
func (o *Object) Compress() (oid plumbing.Oid, data []byte, err error) {
	fileContent := o.header()
	o.ID = plumbing.NewOidFromContent(fileContent)

	compressedContent := new(bytes.Buffer)
	zw := zlib.NewWriter(compressedContent)
	defer func() {
		closeErr := zw.Close()
		if err == nil {
			err = closeErr
		}
	}()
	if _, err = zw.Write(fileContent); err != nil {
		return plumbing.NullOid, nil, xerrors.Errorf("could not zlib the object: %w", err)
	}
	if err = zw.Close(); err != nil {
		return plumbing.NullOid, nil, xerrors.Errorf("could not close the compressor: %w", err)
	}
	return o.ID, compressedContent.Bytes(), nil
}

// Decompress parses a zlib-wrapped loose object back into an Object.
func Decompress(data []byte) (*Object, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, xerrors.Errorf("could not create zlib reader: %w", err)
	}
	defer zr.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, xerrors.Errorf("could not inflate object: %w", err)
	}
	return decodeHeader(buf.Bytes())
}

// decodeHeader splits "type size\0content" into an Object.
func decodeHeader(raw []byte) (*Object, error) {
	typData := readutil.ReadTo(raw, ' ')
	if len(typData) == 0 {
		return nil, xerrors.Errorf("could not find object type: %w", ErrObjectUnknown)
	}
	offset := len(typData) + 1

	sizeData := readutil.ReadTo(raw[offset:], 0)
	if sizeData == nil {
		return nil, xerrors.Errorf("could not find object size: %w", ErrObjectUnknown)
	}
	offset += len(sizeData) + 1

	size, err := strconv.Atoi(string(sizeData))
	if err != nil {
		return nil, xerrors.Errorf("invalid object size %q: %w", sizeData, err)
	}
	if offset+size > len(raw) {
		return nil, xerrors.Errorf("object content shorter than its announced size: %w", ErrObjectUnknown)
	}

	typ, err := NewTypeFromString(string(typData))
	if err != nil {
		return nil, err
	}

	content := make([]byte, size)
	copy(content, raw[offset:offset+size])
	o := New(typ, content)
	o.ID = plumbing.NewOidFromContent(raw[:offset+size])
	return o, nil
}

// NewFromTypeAndPayload builds an Object directly from a packfile entry's
// resolved type and inflated payload (no wrapping header present yet).
func NewFromTypeAndPayload(typ Type, payload []byte) *Object {
	o := New(typ, payload)
	o.ID = o.Hash()
	return o
}

// AsBlob reinterprets the object as a Blob.
func (o *Object) AsBlob() *Blob {
	return NewBlob(o.ID, o.content)
}

// AsTree reinterprets the object as a Tree.
//
// A tree entry has the form:
//
//	{octal_mode} {path_name}\0{20-byte raw oid}
//
// The oid is taken as exactly 20 raw bytes following the first NUL; those
// bytes are not text and may themselves contain a NUL, so they must never
// be split on again.
func (o *Object) AsTree() (*Tree, error) {
	entries := []*TreeEntry{}

	objData := o.Bytes()
	offset := 0
	var err error
	for offset < len(objData) {
		entry := &TreeEntry{}
		data := readutil.ReadTo(objData[offset:], ' ')
		if len(data) == 0 {
			return nil, xerrors.Errorf("could not retrieve the mode: %w", ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the space
		mode, err := strconv.ParseInt(string(data), 8, 32)
		if err != nil {
			return nil, xerrors.Errorf("invalid mode %q: %w", data, ErrTreeInvalid)
		}
		entry.Mode = FileMode(mode)

		data = readutil.ReadTo(objData[offset:], 0)
		if data == nil {
			return nil, xerrors.Errorf("could not retrieve the path: %w", ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the \0
		entry.Path = string(data)

		if offset+plumbing.OidSize > len(objData) {
			return nil, xerrors.Errorf("not enough space to retrieve the ID: %w", ErrTreeInvalid)
		}
		entry.ID, err = plumbing.NewOidFromHex(objData[offset : offset+plumbing.OidSize])
		if err != nil {
			return nil, xerrors.Errorf("%s: %w", ErrTreeInvalid.Error(), err)
		}
		offset += plumbing.OidSize

		entries = append(entries, entry)
	}

	return NewTreeWithID(o.ID, entries), nil
}

// AsCommit reinterprets the object as a Commit.
//
// A commit has the form:
//
//	tree {sha}
//	parent {sha}
//	author {name} <{email}> {seconds} {timezone}
//	committer {name} <{email}> {seconds} {timezone}
//	{blank line}
//	{message}
//
// A commit may have 0 parents (the root commit), 1 (an ordinary commit) or
// 2+ (a merge).
func (o *Object) AsCommit() (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, xerrors.Errorf("type %s is not a commit", o.typ)
	}
	ci := &Commit{id: o.ID, rawObject: o}
	offset := 0
	objData := o.Bytes()
	for {
		line := readutil.ReadTo(objData[offset:], '\n')
		offset += len(line) + 1 // +1 to count the \n

		if len(line) == 0 && offset == 1 {
			return nil, xerrors.Errorf("could not find commit first line: %w", ErrCommitInvalid)
		}

		if len(line) == 0 {
			ci.message = string(objData[offset:])
			break
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			continue
		}
		switch string(kv[0]) {
		case "tree":
			oid, err := plumbing.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse tree id %q: %w", kv[1], err)
			}
			ci.treeID = oid
		case "parent":
			oid, err := plumbing.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse parent id %q: %w", kv[1], err)
			}
			ci.parentIDs = append(ci.parentIDs, oid)
		case "author":
			sig, err := NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse author signature %q: %w", kv[1], err)
			}
			ci.author = sig
		case "committer":
			sig, err := NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse committer signature %q: %w", kv[1], err)
			}
			ci.committer = sig
		case "gpgsig":
			begin := string(kv[1]) + "\n"
			end := "-----END PGP SIGNATURE-----\n"
			i := bytes.Index(objData[offset:], []byte(end))
			if i >= 0 {
				ci.gpgSig = begin + string(objData[offset:offset+i]) + end
				offset += len(end) + i
			}
		}
	}

	if ci.treeID.IsZero() {
		return nil, xerrors.Errorf("commit has no tree line: %w", ErrCommitInvalid)
	}

	return ci, nil
}
