// Package plumbing contains the low-level types shared by every layer of
// ugit: the object identifier and the errors common to the object store,
// the pack parser, and the reference store.
package plumbing

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
)

// OidSize is the length of an Oid, in bytes.
const OidSize = 20

var (
	// NullOid is the zero-value Oid.
	NullOid = Oid{}

	// ErrInvalidOid is returned when a given value isn't a valid Oid.
	ErrInvalidOid = errors.New("invalid oid")
)

// Oid is a git object identifier: the SHA-1 digest of an object's canonical
// wrapped form (type, size, and payload — see (*object.Object).Hash).
type Oid [OidSize]byte

// Bytes returns the raw bytes of the Oid.
func (o Oid) Bytes() []byte {
	return o[:]
}

// String renders the Oid as 40 lowercase hex characters.
func (o Oid) String() string {
	return hex.EncodeToString(o[:])
}

// IsZero reports whether o is NullOid.
func (o Oid) IsZero() bool {
	return o == NullOid
}

// NewOidFromContent returns the SHA-1 sum of the given bytes.
// Callers needing the object-identity hash (type + length + payload) should
// use (*object.Object).Hash instead; this is the raw primitive it's built on.
func NewOidFromContent(data []byte) Oid {
	return sha1.Sum(data)
}

// NewOidFromHex builds an Oid from 20 raw (non-hex-encoded) bytes.
func NewOidFromHex(id []byte) (Oid, error) {
	if len(id) < OidSize {
		return NullOid, ErrInvalidOid
	}
	var oid Oid
	copy(oid[:], id)
	return oid, nil
}

// NewOidFromChars builds an Oid from its 40-char hex ASCII representation,
// passed as a byte slice.
func NewOidFromChars(id []byte) (Oid, error) {
	return NewOidFromStr(string(id))
}

// NewOidFromStr builds an Oid from its 40-char hex string representation.
func NewOidFromStr(id string) (Oid, error) {
	decoded, err := hex.DecodeString(id)
	if err != nil {
		return NullOid, ErrInvalidOid
	}
	if len(decoded) != OidSize {
		return NullOid, ErrInvalidOid
	}
	var oid Oid
	copy(oid[:], decoded)
	return oid, nil
}
