package fsbackend

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelmin/ugit/backend"
	"github.com/kelmin/ugit/internal/gitpath"
	"github.com/kelmin/ugit/plumbing"
	"golang.org/x/xerrors"
)

// Reference returns a stored reference from its name. ErrRefNotFound is
// returned if it doesn't exist anywhere, including packed-refs.
func (b *Backend) Reference(name string) (*plumbing.Reference, error) {
	var packedRef map[string]string

	finder := func(name string) ([]byte, error) {
		data, err := ioutil.ReadFile(b.systemPath(name))
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, xerrors.Errorf("could not read reference content: %w", err)
			}
			if packedRef == nil {
				packedRef, err = b.parsePackedRefs()
				if err != nil {
					return nil, xerrors.Errorf("couldn't load packed-refs: %w", err)
				}
			}
			sha, ok := packedRef[name]
			if !ok {
				return nil, xerrors.Errorf("ref %q: %w", name, plumbing.ErrRefNotFound)
			}
			return []byte(sha), nil
		}
		return data, nil
	}
	return plumbing.ResolveReference(name, finder)
}

// systemPath returns the on-disk path of a reference, translating "/" to
// the platform separator.
func (b *Backend) systemPath(name string) string {
	return filepath.Join(b.root, filepath.FromSlash(name))
}

// parsePackedRefs parses .git/packed-refs into a name->oid-string map.
// https://git-scm.com/docs/git-pack-refs
func (b *Backend) parsePackedRefs() (refs map[string]string, err error) {
	refs = map[string]string{}
	f, err := b.fs.Open(filepath.Join(b.root, gitpath.PackedRefsPath))
	if err != nil {
		if os.IsNotExist(err) {
			return refs, nil
		}
		return nil, xerrors.Errorf("could not open %s: %w", gitpath.PackedRefsPath, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	sc := bufio.NewScanner(f)
	for i := 1; sc.Scan(); i++ {
		line := sc.Text()
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, xerrors.Errorf("unexpected data on line %d of %s", i, gitpath.PackedRefsPath)
		}
		refs[parts[1]] = parts[0]
	}
	if sc.Err() != nil {
		return nil, xerrors.Errorf("could not parse %s: %w", gitpath.PackedRefsPath, sc.Err())
	}

	return refs, nil
}

// WriteReference writes ref to disk, overwriting it if it already exists.
func (b *Backend) WriteReference(ref *plumbing.Reference) error {
	if !plumbing.IsRefNameValid(ref.Name()) {
		return plumbing.ErrRefNameInvalid
	}

	var content string
	switch ref.Type() {
	case plumbing.SymbolicReference:
		content = fmt.Sprintf("ref: %s\n", ref.SymbolicTarget())
	case plumbing.OidReference:
		content = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return xerrors.Errorf("unknown reference type %d", ref.Type())
	}

	p := b.systemPath(ref.Name())
	if err := b.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return xerrors.Errorf("could not create directory for reference %s: %w", ref.Name(), err)
	}
	if err := atomicWriteFile(b.fs, p, []byte(content), 0o644); err != nil {
		return xerrors.Errorf("could not persist reference %s: %w", ref.Name(), err)
	}
	return nil
}

// WriteReferenceSafe writes ref, returning ErrRefExists if it's already
// present on disk or in packed-refs.
func (b *Backend) WriteReferenceSafe(ref *plumbing.Reference) error {
	if !plumbing.IsRefNameValid(ref.Name()) {
		return plumbing.ErrRefNameInvalid
	}

	p := b.systemPath(ref.Name())
	if _, err := b.fs.Stat(p); !os.IsNotExist(err) {
		if err != nil {
			return xerrors.Errorf("could not check if reference exists on disk: %w", err)
		}
		return plumbing.ErrRefExists
	}

	refs, err := b.parsePackedRefs()
	if err != nil {
		return xerrors.Errorf("could not check %s: %w", gitpath.PackedRefsPath, err)
	}
	if _, ok := refs[ref.Name()]; ok {
		return plumbing.ErrRefExists
	}

	return b.WriteReference(ref)
}

// WalkReferences runs f on every loose reference under refs/. packed-refs
// entries are intentionally not walked: ugit never writes that file (see
// the Non-goals), so any present belongs to a repository this client
// didn't create and isn't expected to enumerate exhaustively.
func (b *Backend) WalkReferences(f func(ref *plumbing.Reference) error) error {
	root := filepath.Join(b.root, gitpath.RefsPath)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return xerrors.Errorf("could not compute reference name for %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)

		ref, err := b.Reference(name)
		if err != nil {
			return xerrors.Errorf("could not resolve reference %s: %w", name, err)
		}
		return f(ref)
	})
	if err == backend.WalkStop {
		return nil
	}
	return err
}
