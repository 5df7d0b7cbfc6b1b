package fsbackend

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// atomicWriteFile writes data to path by writing a temporary file in the
// same directory and renaming it into place, so a process killed mid-write
// never leaves a truncated file at path. Renaming within a directory is
// atomic on every platform git itself targets.
func atomicWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, ".tmp-*")
	if err != nil {
		return xerrors.Errorf("could not create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return xerrors.Errorf("could not write temp file %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return xerrors.Errorf("could not close temp file %s: %w", tmpName, err)
	}
	if err = fs.Chmod(tmpName, perm); err != nil {
		return xerrors.Errorf("could not set permissions on %s: %w", tmpName, err)
	}
	if err = fs.Rename(tmpName, path); err != nil {
		return xerrors.Errorf("could not rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
