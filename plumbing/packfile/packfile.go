// Package packfile parses a git packfile as it streams in from a smart-HTTP
// upload-pack response: no on-disk .idx is involved, objects are resolved
// as the bytes arrive.
package packfile

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"io"

	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"golang.org/x/xerrors"
)

// packfileHeaderSize is the 12-byte fixed header: 4-byte magic, 4-byte
// version, 4-byte object count.
const packfileHeaderSize = 12

func packMagic() []byte   { return []byte{'P', 'A', 'C', 'K'} }
func packVersion() []byte { return []byte{0, 0, 0, 2} }

var (
	// ErrIntOverflow is returned when a variable-length size or offset
	// can't fit in 64 bits.
	ErrIntOverflow = errors.New("int64 overflow")
	// ErrInvalidMagic is returned when the stream doesn't start with PACK.
	ErrInvalidMagic = errors.New("invalid packfile magic")
	// ErrInvalidVersion is returned for a pack version other than 2.
	ErrInvalidVersion = errors.New("invalid packfile version")
	// ErrUnsupportedDelta is returned for OFS-delta entries, which ugit
	// does not resolve (upload-pack will serve REF-delta to a client that
	// doesn't advertise the ofs-delta capability).
	ErrUnsupportedDelta = errors.New("ofs-delta entries are not supported")
	// ErrMissingBase is returned when a REF-delta's base object never
	// showed up, neither anywhere in the same pack nor in the local store.
	ErrMissingBase = errors.New("delta base object not found")
)

// ObjectGetter resolves an Oid against storage external to the pack being
// parsed, used to find delta bases the pack itself doesn't carry.
type ObjectGetter interface {
	GetObject(oid plumbing.Oid) (*object.Object, error)
}

// noopGetter is used when the caller has nothing to fall back on, e.g.
// when parsing a pack in isolation during tests.
type noopGetter struct{}

func (noopGetter) GetObject(oid plumbing.Oid) (*object.Object, error) {
	return nil, plumbing.ErrObjectNotFound
}

// rawEntry is an entry exactly as read off the wire, before delta
// resolution.
type rawEntry struct {
	typ     object.Type
	payload []byte
	baseOID plumbing.Oid // set only for ObjectDeltaRef
}

// Pack is the result of streaming a packfile: every object it carried,
// fully resolved, in the order they appeared on the wire.
type Pack struct {
	Objects []*object.Object
}

// Parse reads a packfile from r (the 12-byte header, then as many entries
// as the header announces) and resolves every object, including REF-delta
// entries. The trailing SHA-1 checksum is neither read nor verified.
//
// Base objects for a REF-delta are looked for in two places: objects
// already resolved earlier in this same pack (regardless of wire order —
// a delta commonly precedes its base) and, failing that, getter. getter
// may be nil, in which case only intra-pack bases are considered.
func Parse(r io.Reader, getter ObjectGetter) (*Pack, error) {
	if getter == nil {
		getter = noopGetter{}
	}

	br := bufio.NewReader(r)

	header := make([]byte, packfileHeaderSize)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, xerrors.Errorf("could not read packfile header: %w", err)
	}
	if !bytes.Equal(header[0:4], packMagic()) {
		return nil, xerrors.Errorf("header %q: %w", header[0:4], ErrInvalidMagic)
	}
	if !bytes.Equal(header[4:8], packVersion()) {
		return nil, xerrors.Errorf("header %q: %w", header[4:8], ErrInvalidVersion)
	}
	count := be32(header[8:12])

	raws := make([]rawEntry, count)
	for i := uint32(0); i < count; i++ {
		entry, err := readEntry(br)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %w", i, err)
		}
		raws[i] = entry
	}

	return resolve(raws, getter)
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// readEntry reads one packfile entry: its variable-length type+size header,
// an optional REF-delta base oid, and its zlib-compressed payload.
func readEntry(br *bufio.Reader) (rawEntry, error) {
	first, err := br.ReadByte()
	if err != nil {
		return rawEntry{}, xerrors.Errorf("could not read entry header: %w", err)
	}

	// value       : MTTT_SSSS // M = MSB, T = type, S = size
	typ := object.Type((first & 0b_0111_0000) >> 4)
	if !typ.IsValid() {
		return rawEntry{}, xerrors.Errorf("unknown object type %d", typ)
	}
	size := uint64(first & 0b_0000_1111)

	if isMSBSet(first) {
		rest, err := readSizeContinuation(br)
		if err != nil {
			return rawEntry{}, xerrors.Errorf("could not read object size: %w", err)
		}
		size |= rest << 4
	}

	entry := rawEntry{typ: typ}

	switch typ {
	case object.ObjectDeltaRef:
		baseRaw := make([]byte, plumbing.OidSize)
		if _, err := io.ReadFull(br, baseRaw); err != nil {
			return rawEntry{}, xerrors.Errorf("could not read delta base oid: %w", err)
		}
		baseOID, err := plumbing.NewOidFromHex(baseRaw)
		if err != nil {
			return rawEntry{}, xerrors.Errorf("invalid delta base oid: %w", err)
		}
		entry.baseOID = baseOID
	case object.ObjectDeltaOFS:
		return rawEntry{}, ErrUnsupportedDelta
	}

	zr, err := zlib.NewReader(br)
	if err != nil {
		return rawEntry{}, xerrors.Errorf("could not open zlib stream: %w", err)
	}
	defer zr.Close()

	payload := new(bytes.Buffer)
	if _, err := io.Copy(payload, zr); err != nil {
		return rawEntry{}, xerrors.Errorf("could not inflate entry: %w", err)
	}
	if payload.Len() != int(size) {
		return rawEntry{}, xerrors.Errorf("entry size mismatch: announced %d, got %d", size, payload.Len())
	}
	entry.payload = payload.Bytes()

	return entry, nil
}

// resolve turns raw entries into fully-materialized objects, deferring
// REF-delta entries until their base is available — either another entry
// in this same pack (in any order) or an object returned by getter. It
// iterates to a fixpoint: each pass resolves whatever it can and retries
// the rest, stopping when a pass makes no progress.
func resolve(raws []rawEntry, getter ObjectGetter) (*Pack, error) {
	ready := make(map[plumbing.Oid]*object.Object, len(raws))
	resolvedAt := make([]*object.Object, len(raws))

	type pendingEntry struct {
		index int
		entry rawEntry
	}
	var pending []pendingEntry

	for i, e := range raws {
		if e.typ == object.ObjectDeltaRef {
			pending = append(pending, pendingEntry{index: i, entry: e})
			continue
		}
		o := object.NewFromTypeAndPayload(e.typ, e.payload)
		ready[o.ID] = o
		resolvedAt[i] = o
	}

	for len(pending) > 0 {
		progressed := false
		remaining := pending[:0]

		for _, pe := range pending {
			base, ok := ready[pe.entry.baseOID]
			if !ok {
				var err error
				base, err = getter.GetObject(pe.entry.baseOID)
				if err != nil {
					if errors.Is(err, plumbing.ErrObjectNotFound) {
						remaining = append(remaining, pe)
						continue
					}
					return nil, xerrors.Errorf("could not fetch delta base %s: %w", pe.entry.baseOID, err)
				}
			}

			resolvedPayload, err := ApplyDelta(base.Bytes(), pe.entry.payload)
			if err != nil {
				return nil, xerrors.Errorf("could not apply delta against base %s: %w", pe.entry.baseOID, err)
			}
			o := object.NewFromTypeAndPayload(base.Type(), resolvedPayload)
			ready[o.ID] = o
			resolvedAt[pe.index] = o
			progressed = true
		}

		pending = remaining
		if !progressed {
			return nil, xerrors.Errorf("%d unresolved delta(s): %w", len(pending), ErrMissingBase)
		}
	}

	return &Pack{Objects: resolvedAt}, nil
}

// readSizeContinuation reads the variable-length continuation bytes of an
// entry header's size, past its initial 4-bit chunk. Each byte holds 7 bits
// of the size, little-endian, with the MSB marking whether another byte
// follows.
func readSizeContinuation(br *bufio.Reader) (uint64, error) {
	var size uint64
	for shift := uint(0); ; shift += 7 {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		size |= uint64(unsetMSB(b)) << shift
		if !isMSBSet(b) {
			return size, nil
		}
		if shift >= 63 {
			return 0, ErrIntOverflow
		}
	}
}

func isMSBSet(b byte) bool {
	return b >= 0b_1000_0000
}

func unsetMSB(b byte) byte {
	return b & 0b_0111_1111
}
