package ugit

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"golang.org/x/xerrors"
)

// Checkout materializes commitOID's tree into r's working directory:
// subtrees become directories, blobs become files (executable bit set per
// the tree entry's mode), and symlink entries become real symlinks where
// the platform supports them, or a plain file containing the link target
// otherwise.
func Checkout(r *Repository, commitOID plumbing.Oid) error {
	o, err := r.dotGit.Object(commitOID)
	if err != nil {
		return xerrors.Errorf("could not read commit %s: %w", commitOID, err)
	}
	commit, err := o.AsCommit()
	if err != nil {
		return xerrors.Errorf("could not decode commit %s: %w", commitOID, err)
	}

	if err := checkoutTree(r, commit.TreeID(), r.repoRoot); err != nil {
		return xerrors.Errorf("could not checkout tree %s: %w", commit.TreeID(), err)
	}
	return nil
}

func checkoutTree(r *Repository, treeOID plumbing.Oid, dest string) error {
	o, err := r.dotGit.Object(treeOID)
	if err != nil {
		return xerrors.Errorf("could not read tree %s: %w", treeOID, err)
	}
	tree, err := o.AsTree()
	if err != nil {
		return xerrors.Errorf("could not decode tree %s: %w", treeOID, err)
	}

	for _, entry := range tree.Entries {
		entryPath := filepath.Join(dest, entry.Path)

		switch entry.Mode {
		case object.ModeDir:
			if err := os.MkdirAll(entryPath, 0o755); err != nil {
				return xerrors.Errorf("could not create directory %s: %w", entryPath, err)
			}
			if err := checkoutTree(r, entry.ID, entryPath); err != nil {
				return err
			}
		case object.ModeSymlink:
			blobObj, err := r.dotGit.Object(entry.ID)
			if err != nil {
				return xerrors.Errorf("could not read symlink target %s: %w", entry.ID, err)
			}
			target := string(blobObj.Bytes())
			if err := writeSymlink(entryPath, target); err != nil {
				return xerrors.Errorf("could not create symlink %s: %w", entryPath, err)
			}
		default:
			blobObj, err := r.dotGit.Object(entry.ID)
			if err != nil {
				return xerrors.Errorf("could not read blob %s: %w", entry.ID, err)
			}
			perm := os.FileMode(0o644)
			if entry.Mode == object.ModeExecutable {
				perm = 0o755
			}
			if err := ioutil.WriteFile(entryPath, blobObj.Bytes(), perm); err != nil {
				return xerrors.Errorf("could not write file %s: %w", entryPath, err)
			}
		}
	}

	return nil
}

// writeSymlink creates a symlink at path pointing at target. On platforms
// without symlink support it falls back to a regular file containing the
// target, per the checkout contract.
func writeSymlink(path, target string) error {
	if runtime.GOOS == "windows" {
		return ioutil.WriteFile(path, []byte(target), 0o644)
	}
	if err := os.Symlink(target, path); err != nil {
		if os.IsExist(err) {
			if rmErr := os.Remove(path); rmErr != nil {
				return rmErr
			}
			return os.Symlink(target, path)
		}
		return err
	}
	return nil
}
