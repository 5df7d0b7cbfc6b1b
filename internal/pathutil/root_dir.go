// Package pathutil locates a repository's root from the current or a given
// working directory.
package pathutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kelmin/ugit/internal/gitpath"
	"golang.org/x/xerrors"
)

// ErrNoRepo is returned when no repository is found in the given directory
// or any of its parents.
var ErrNoRepo = errors.New("not a git repository (or any of the parent directories)")

// RepoRoot returns the absolute path to the root of the repository
// containing the current working directory.
func RepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", xerrors.Errorf("could not get current working directory: %w", err)
	}
	return RepoRootFromPath(wd)
}

// RepoRootFromPath returns the absolute path to the root of the repository
// containing p, walking up parent directories until a .git directory is
// found.
func RepoRootFromPath(p string) (string, error) {
	p, err := filepath.Abs(p)
	if err != nil {
		return "", xerrors.Errorf("could not get absolute path: %w", err)
	}
	prev := ""
	for p != prev {
		info, err := os.Stat(filepath.Join(p, gitpath.DotGitPath))
		if err == nil && info.IsDir() {
			return p, nil
		}

		prev = p
		p = filepath.Dir(p)
	}
	return "", ErrNoRepo
}

// DotGitFromPath returns the absolute path to the .git directory of the
// repository containing p.
func DotGitFromPath(p string) (string, error) {
	root, err := RepoRootFromPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, gitpath.DotGitPath), nil
}
