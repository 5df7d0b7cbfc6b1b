package ugit

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kelmin/ugit/internal/gitpath"
	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"golang.org/x/xerrors"
)

// gitIgnoreName is the only ignore file write-tree honors.
const gitIgnoreName = ".gitignore"

// WriteTree walks the repository's root directory and persists a tree
// object describing its contents, returning the tree's Oid. Subdirectories are recursed into and
// persisted as their own tree objects; .git and anything whose name appears
// as a substring of the repository root's .gitignore are skipped.
//
// The ignore check is a deliberately naive substring containment against
// the whole file, not glob-style pattern matching or per-line lookup: an
// entry is dropped if its name is contained anywhere in .gitignore's raw
// content. This mirrors a real, if unusual, bug in the tool this client is
// compatible with: re-implement it rather than silently upgrading to
// correct .gitignore semantics.
func (r *Repository) WriteTree() (plumbing.Oid, error) {
	ignore, err := r.gitIgnoreContent()
	if err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not read .gitignore: %w", err)
	}
	return r.writeTreeDir(r.repoRoot, ignore)
}

func (r *Repository) gitIgnoreContent() (string, error) {
	data, err := ioutil.ReadFile(filepath.Join(r.repoRoot, gitIgnoreName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// isIgnored reports whether name appears as a substring of ignore, the raw
// .gitignore content.
func isIgnored(name, ignore string) bool {
	return strings.Contains(ignore, name)
}

func (r *Repository) writeTreeDir(dirPath, ignore string) (plumbing.Oid, error) {
	dirEntries, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not read directory %s: %w", dirPath, err)
	}

	names := make([]string, 0, len(dirEntries))
	byName := map[string]os.FileInfo{}
	for _, e := range dirEntries {
		name := e.Name()
		if name == gitpath.DotGitPath {
			continue
		}
		if isIgnored(name, ignore) {
			continue
		}
		names = append(names, name)
		byName[name] = e
	}
	sort.Strings(names)

	entries := make([]*object.TreeEntry, 0, len(names))
	for _, name := range names {
		info := byName[name]
		fullPath := filepath.Join(dirPath, name)

		var (
			mode object.FileMode
			oid  plumbing.Oid
		)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(fullPath)
			if err != nil {
				return plumbing.NullOid, xerrors.Errorf("could not read symlink %s: %w", fullPath, err)
			}
			mode = object.ModeSymlink
			oid, err = r.writeBlob([]byte(target))
			if err != nil {
				return plumbing.NullOid, err
			}
		case info.IsDir():
			mode = object.ModeDir
			oid, err = r.writeTreeDir(fullPath, ignore)
			if err != nil {
				return plumbing.NullOid, err
			}
		default:
			content, err := ioutil.ReadFile(fullPath)
			if err != nil {
				return plumbing.NullOid, xerrors.Errorf("could not read file %s: %w", fullPath, err)
			}
			mode = object.ModeFile
			if info.Mode()&0o111 != 0 {
				mode = object.ModeExecutable
			}
			oid, err = r.writeBlob(content)
			if err != nil {
				return plumbing.NullOid, err
			}
		}

		entries = append(entries, &object.TreeEntry{
			Mode: mode,
			Path: name,
			ID:   oid,
		})
	}

	tree := object.NewTree(entries)
	o, err := tree.ToObject()
	if err != nil {
		return plumbing.NullOid, xerrors.Errorf("could not encode tree for %s: %w", dirPath, err)
	}
	return r.dotGit.WriteObject(o)
}

func (r *Repository) writeBlob(content []byte) (plumbing.Oid, error) {
	b := object.New(object.TypeBlob, content)
	return r.dotGit.WriteObject(b)
}
