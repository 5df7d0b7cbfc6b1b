// Package fsbackend implements backend.Backend on top of the local
// filesystem, the same .git layout mainstream git uses.
package fsbackend

import (
	"path/filepath"
	"sync"

	"github.com/kelmin/ugit/backend"
	"github.com/kelmin/ugit/internal/cache"
	"github.com/kelmin/ugit/internal/gitpath"
	"github.com/kelmin/ugit/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// defaultCacheSize bounds how many inflated objects are kept in memory.
const defaultCacheSize = 256

// defaultMutexShards bounds the number of per-key mutexes objectMu shards
// concurrent writers/readers across.
const defaultMutexShards = 64

var _ backend.Backend = (*Backend)(nil)

// Backend stores objects and references under a .git directory on disk.
type Backend struct {
	root string
	fs   afero.Fs

	cache    *cache.LRU
	objectMu *syncutil.NamedMutex

	// looseObjects records the oids WriteObject has persisted through this
	// Backend. Object and HasObject do not consult it.
	looseObjects sync.Map
}

// New returns a Backend rooted at dotGitPath (a repository's .git
// directory, or the repository root itself for a bare repository).
func New(dotGitPath string) *Backend {
	return &Backend{
		root:     dotGitPath,
		fs:       afero.NewOsFs(),
		cache:    cache.NewLRU(defaultCacheSize),
		objectMu: syncutil.NewNamedMutex(defaultMutexShards),
	}
}

// Init lays out a fresh repository: object/ref directories, a description
// file, and a default config.
func (b *Backend) Init() error {
	dirs := []string{
		gitpath.ObjectsPath,
		gitpath.RefsTagsPath,
		gitpath.RefsHeadsPath,
		gitpath.RefsRemotesPath,
		gitpath.ObjectsInfoPath,
		gitpath.ObjectsPackPath,
	}
	for _, d := range dirs {
		fullPath := filepath.Join(b.root, d)
		if err := b.fs.MkdirAll(fullPath, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	descPath := filepath.Join(b.root, gitpath.DescriptionPath)
	desc := []byte("Unnamed repository; edit this file 'description' to name the repository.\n")
	if err := afero.WriteFile(b.fs, descPath, desc, 0o644); err != nil {
		return xerrors.Errorf("could not create %s: %w", gitpath.DescriptionPath, err)
	}

	if err := b.setDefaultCfg(); err != nil {
		return xerrors.Errorf("could not set the default config: %w", err)
	}

	return nil
}

// Close releases resources held by the backend. The filesystem backend
// holds none, but satisfies the interface for backends that do (a future
// packfile reader, for instance).
func (b *Backend) Close() error {
	return nil
}
