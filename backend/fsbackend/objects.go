package fsbackend

import (
	"compress/zlib"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kelmin/ugit/backend"
	"github.com/kelmin/ugit/internal/errutil"
	"github.com/kelmin/ugit/internal/gitpath"
	"github.com/kelmin/ugit/internal/readutil"
	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Object returns the object with the given oid. Safe for concurrent use.
func (b *Backend) Object(oid plumbing.Oid) (*object.Object, error) {
	key := oid[:]
	b.objectMu.Lock(key)
	defer b.objectMu.Unlock(key)

	return b.objectUnsafe(oid)
}

func (b *Backend) objectUnsafe(oid plumbing.Oid) (*object.Object, error) {
	if cached, found := b.cache.Get(oid); found {
		if o, valid := cached.(*object.Object); valid {
			return o, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObjectPath returns the on-disk path of an object, e.g. the path of
// fcfe68a0e44e04bd7fd564fc0b75f1ae457e18b3 is
// .git/objects/fc/fe68a0e44e04bd7fd564fc0b75f1ae457e18b3
func (b *Backend) looseObjectPath(sha string) string {
	return filepath.Join(b.root, gitpath.ObjectsPath, sha[:2], sha[2:])
}

// looseObject reads and decodes a loose object. Its on-disk form is
// zlib-wrapped "{type} {size}\0{content}".
func (b *Backend) looseObject(oid plumbing.Oid) (o *object.Object, err error) {
	strOid := oid.String()
	p := b.looseObjectPath(strOid)

	if _, statErr := b.fs.Stat(p); statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, xerrors.Errorf("object %s: %w", strOid, plumbing.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not stat object %s at %s: %w", strOid, p, statErr)
	}

	f, err := b.fs.Open(p)
	if err != nil {
		return nil, xerrors.Errorf("could not open object %s at %s: %w", strOid, p, err)
	}
	defer errutil.Close(f, &err)

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s at %s: %w", strOid, p, err)
	}
	defer errutil.Close(zr, &err)

	buff, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s at %s: %w", strOid, p, err)
	}

	offset := 0
	typ := readutil.ReadTo(buff, ' ')
	if typ == nil {
		return nil, xerrors.Errorf("could not find type for object %s at %s", strOid, p)
	}
	oType, err := object.NewTypeFromString(string(typ))
	if err != nil {
		return nil, xerrors.Errorf("unsupported type %q for object %s at %s: %w", typ, strOid, p, err)
	}
	offset += len(typ) + 1

	size := readutil.ReadTo(buff[offset:], 0)
	if size == nil {
		return nil, xerrors.Errorf("could not find size for object %s at %s", strOid, p)
	}
	oSize, err := strconv.Atoi(string(size))
	if err != nil {
		return nil, xerrors.Errorf("invalid size %q for object %s at %s: %w", size, strOid, p, err)
	}
	offset += len(size) + 1

	content := buff[offset:]
	if len(content) != oSize {
		return nil, xerrors.Errorf("object %s marked as size %d, but has %d at %s", strOid, oSize, len(content), p)
	}

	return object.NewWithID(oid, oType, content), nil
}

// HasObject reports whether an object exists in the database. Safe for
// concurrent use.
func (b *Backend) HasObject(oid plumbing.Oid) (bool, error) {
	key := oid[:]
	b.objectMu.Lock(key)
	defer b.objectMu.Unlock(key)
	return b.hasObjectUnsafe(oid)
}

func (b *Backend) hasObjectUnsafe(oid plumbing.Oid) (bool, error) {
	_, err := b.objectUnsafe(oid)
	if err == nil {
		return true, nil
	}
	if xerrors.Is(err, plumbing.ErrObjectNotFound) {
		return false, nil
	}
	return false, xerrors.Errorf("could not get object: %w", err)
}

// WriteObject compresses and persists o, skipping the write if the object
// is already present. Safe for concurrent use; returns the object's Oid
// either way.
func (b *Backend) WriteObject(o *object.Object) (plumbing.Oid, error) {
	oid, data, err := o.Compress()
	if err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not compress object: %w", err)
	}

	key := oid[:]
	b.objectMu.Lock(key)
	defer b.objectMu.Unlock(key)

	found, err := b.hasObjectUnsafe(oid)
	if err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not check if object %s already exists: %w", oid, err)
	}
	if found {
		return oid, nil
	}

	p := b.looseObjectPath(oid.String())
	dest := filepath.Dir(p)
	if err := b.fs.MkdirAll(dest, 0o755); err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not create directory %s: %w", dest, err)
	}

	// Objects are read-only once written, same as mainstream git.
	if err := atomicWriteFile(b.fs, p, data, 0o444); err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not persist object %s at %s: %w", oid, p, err)
	}

	b.looseObjects.Store(oid, struct{}{})
	b.cache.Add(oid, o)
	return oid, nil
}

// WalkLooseObjectIDs runs f on the oid of every loose object on disk.
func (b *Backend) WalkLooseObjectIDs(f func(oid plumbing.Oid) error) error {
	p := filepath.Join(b.root, gitpath.ObjectsPath)
	err := afero.Walk(b.fs, p, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path == p {
			return nil
		}
		if info.IsDir() {
			if !isLooseObjectDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		prefix := filepath.Base(filepath.Dir(path))
		if !isLooseObjectDir(prefix) {
			return nil
		}

		sha := prefix + info.Name()
		oid, err := plumbing.NewOidFromStr(sha)
		if err != nil {
			return xerrors.Errorf("could not parse oid from %s: %w", sha, err)
		}
		return f(oid)
	})
	if err == backend.WalkStop {
		return nil
	}
	return err
}

// isLooseObjectDir reports whether name is a two-char hex directory, i.e.
// anything between "00" and "ff".
func isLooseObjectDir(name string) bool {
	if len(name) != 2 {
		return false
	}
	_, err := strconv.ParseInt(name, 16, 16)
	return err == nil
}
