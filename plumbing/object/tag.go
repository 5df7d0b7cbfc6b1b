package object

import (
	"bytes"
	"errors"

	"github.com/kelmin/ugit/internal/readutil"
	"github.com/kelmin/ugit/plumbing"
	"golang.org/x/xerrors"
)

// ErrTagInvalid is returned when a tag object's payload can't be parsed.
var ErrTagInvalid = errors.New("invalid tag")

// Tag represents an annotated tag object. ugit can decode these with AsTag;
// it never creates one.
type Tag struct {
	id      plumbing.Oid
	target  plumbing.Oid
	typ     Type
	name    string
	tagger  Signature
	message string
}

// ID returns the tag object's own Oid.
func (t *Tag) ID() plumbing.Oid {
	return t.id
}

// Target returns the Oid the tag points at.
func (t *Tag) Target() plumbing.Oid {
	return t.target
}

// TargetType returns the type of object the tag points at.
func (t *Tag) TargetType() Type {
	return t.typ
}

// Name returns the tag's name.
func (t *Tag) Name() string {
	return t.name
}

// Message returns the tag's annotation message.
func (t *Tag) Message() string {
	return t.message
}

// AsTag reinterprets the object as an annotated Tag.
//
// A tag has the form:
//
//	object {sha}
//	type {commit|tree|blob|tag}
//	tag {name}
//	tagger {name} <{email}> {seconds} {timezone}
//	{blank line}
//	{message}
func (o *Object) AsTag() (*Tag, error) {
	if o.typ != TypeTag {
		return nil, xerrors.Errorf("type %s is not a tag", o.typ)
	}
	t := &Tag{id: o.ID}
	offset := 0
	objData := o.Bytes()
	for {
		line := readutil.ReadTo(objData[offset:], '\n')
		offset += len(line) + 1

		if len(line) == 0 && offset == 1 {
			return nil, xerrors.Errorf("could not find tag first line: %w", ErrTagInvalid)
		}
		if len(line) == 0 {
			t.message = string(objData[offset:])
			break
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			continue
		}
		switch string(kv[0]) {
		case "object":
			oid, err := plumbing.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse target id %q: %w", kv[1], err)
			}
			t.target = oid
		case "type":
			typ, err := NewTypeFromString(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("could not parse target type %q: %w", kv[1], err)
			}
			t.typ = typ
		case "tag":
			t.name = string(kv[1])
		case "tagger":
			sig, err := NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse tagger signature %q: %w", kv[1], err)
			}
			t.tagger = sig
		}
	}

	return t, nil
}
