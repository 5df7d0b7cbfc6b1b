// Package ugit implements a minimal, interoperable git client: object
// storage, tree/commit construction, and cloning a remote over the HTTP
// smart protocol.
package ugit

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kelmin/ugit/backend"
	"github.com/kelmin/ugit/backend/fsbackend"
	"github.com/kelmin/ugit/internal/gitpath"
	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"github.com/kelmin/ugit/plumbing/packfile"
	"github.com/kelmin/ugit/transport"
	"golang.org/x/xerrors"
)

// Errors returned by Repository.
var (
	ErrRepositoryNotExist = errors.New("repository does not exist")
	ErrRepositoryExists   = errors.New("repository already exists")
)

// DefaultRemoteName is the remote name used by Clone, the same default
// mainstream git uses.
const DefaultRemoteName = "origin"

// Repository represents a single git repository: its object database and
// references, rooted at a ".git" directory on disk.
type Repository struct {
	repoRoot   string
	dotGitPath string
	dotGit     backend.Backend
}

// InitRepository creates a new repository rooted at repoPath: the .git
// directory, its object/ref layout, default config, and HEAD pointing at
// refs/heads/master.
func InitRepository(repoPath string) (*Repository, error) {
	r := &Repository{
		repoRoot:   repoPath,
		dotGitPath: filepath.Join(repoPath, gitpath.DotGitPath),
	}
	r.dotGit = fsbackend.New(r.dotGitPath)

	if err := r.dotGit.Init(); err != nil {
		return nil, xerrors.Errorf("could not initialize repository at %s: %w", repoPath, err)
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.MasterLocalRef)
	if err := r.dotGit.WriteReferenceSafe(head); err != nil {
		if errors.Is(err, plumbing.ErrRefExists) {
			return nil, ErrRepositoryExists
		}
		return nil, xerrors.Errorf("could not write HEAD: %w", err)
	}

	return r, nil
}

// OpenRepository loads an existing repository rooted at repoPath.
func OpenRepository(repoPath string) (*Repository, error) {
	r := &Repository{
		repoRoot:   repoPath,
		dotGitPath: filepath.Join(repoPath, gitpath.DotGitPath),
	}
	r.dotGit = fsbackend.New(r.dotGitPath)

	if _, err := r.dotGit.Reference(plumbing.HEAD); err != nil {
		return nil, ErrRepositoryNotExist
	}

	version, err := r.dotGit.RepoFormatVersion()
	if err != nil {
		return nil, xerrors.Errorf("could not read repository config: %w", err)
	}
	if version != backend.SupportedRepoFormatVersion {
		return nil, xerrors.Errorf("repositoryformatversion %q: %w", version, backend.ErrUnsupportedRepoFormat)
	}

	return r, nil
}

// Root returns the absolute path to the repository's working tree.
func (r *Repository) Root() string {
	return r.repoRoot
}

// DotGitPath returns the absolute path to the repository's .git directory.
func (r *Repository) DotGitPath() string {
	return r.dotGitPath
}

// Close releases any resource held by the repository's backend.
func (r *Repository) Close() error {
	return r.dotGit.Close()
}

// GetObject returns the object with the given Oid from the object database.
func (r *Repository) GetObject(oid plumbing.Oid) (*object.Object, error) {
	return r.dotGit.Object(oid)
}

// HasObject reports whether the object database already has oid.
func (r *Repository) HasObject(oid plumbing.Oid) (bool, error) {
	return r.dotGit.HasObject(oid)
}

// WriteObject persists o and returns its Oid.
func (r *Repository) WriteObject(o *object.Object) (plumbing.Oid, error) {
	return r.dotGit.WriteObject(o)
}

// GetReference resolves a reference by name, e.g. "HEAD" or
// "refs/heads/master".
func (r *Repository) GetReference(name string) (*plumbing.Reference, error) {
	return r.dotGit.Reference(name)
}

// WriteReference persists ref, overwriting it if it already exists.
func (r *Repository) WriteReference(ref *plumbing.Reference) error {
	return r.dotGit.WriteReference(ref)
}

// backendGetter adapts a backend.Backend to packfile.ObjectGetter so the
// pack parser can fall back to the local object store to resolve a
// REF-delta whose base is not in the pack. Clone always parses into a
// freshly initialized repository, so that store holds no objects yet.
type backendGetter struct {
	backend backend.Backend
}

func (g backendGetter) GetObject(oid plumbing.Oid) (*object.Object, error) {
	return g.backend.Object(oid)
}

// Clone creates a new repository at repoPath, fetches every object behind
// the remote's advertised refs, persists them, and checks out the default
// branch into the working tree.
func Clone(remoteURL, repoPath string) (*Repository, error) {
	r, err := InitRepository(repoPath)
	if err != nil {
		return nil, xerrors.Errorf("could not initialize %s: %w", repoPath, err)
	}

	client := transport.NewClient(remoteURL)
	refs, err := client.GetRefs()
	if err != nil {
		return nil, xerrors.Errorf("could not discover remote refs: %w", err)
	}
	if len(refs.List) == 0 {
		return nil, xerrors.Errorf("remote %s advertised no refs", remoteURL)
	}

	wants := make([]plumbing.Oid, 0, len(refs.List))
	seen := map[plumbing.Oid]struct{}{}
	for _, ref := range refs.List {
		if _, ok := seen[ref.Oid]; ok {
			continue
		}
		seen[ref.Oid] = struct{}{}
		wants = append(wants, ref.Oid)
	}

	packBody, err := client.FetchPack(wants)
	if err != nil {
		return nil, xerrors.Errorf("could not fetch pack: %w", err)
	}
	defer packBody.Close()

	pack, err := packfile.Parse(packBody, backendGetter{backend: r.dotGit})
	if err != nil {
		return nil, xerrors.Errorf("could not parse pack: %w", err)
	}

	for _, o := range pack.Objects {
		if _, err := r.dotGit.WriteObject(o); err != nil {
			return nil, xerrors.Errorf("could not persist object %s: %w", o.ID, err)
		}
	}

	if err := r.populateRefs(refs); err != nil {
		return nil, xerrors.Errorf("could not populate refs: %w", err)
	}

	defaultBranch, headOID, err := r.defaultBranchAndHead(refs)
	if err != nil {
		return nil, err
	}

	fsBackend, ok := r.dotGit.(*fsbackend.Backend)
	if ok {
		if err := fsBackend.SetRemote(DefaultRemoteName, remoteURL); err != nil {
			return nil, xerrors.Errorf("could not record remote: %w", err)
		}
		if err := fsBackend.SetBranchUpstream(defaultBranch, DefaultRemoteName); err != nil {
			return nil, xerrors.Errorf("could not record branch upstream: %w", err)
		}
	}

	if err := Checkout(r, headOID); err != nil {
		return nil, xerrors.Errorf("could not checkout %s: %w", headOID, err)
	}

	return r, nil
}

// populateRefs writes refs/heads/<branch> for every advertised branch and
// refs/remotes/<remote>/<branch> plus refs/remotes/<remote>/HEAD, the way
// mainstream git's clone does.
func (r *Repository) populateRefs(refs *transport.Refs) error {
	head, hasHead := refs.HEADRef()

	for _, ref := range refs.List {
		branch, ok := branchFromRefName(ref.Name)
		if !ok {
			continue
		}

		if err := r.dotGit.WriteReference(plumbing.NewReference(plumbing.LocalBranchRefName(branch), ref.Oid)); err != nil {
			return xerrors.Errorf("could not write local branch %s: %w", branch, err)
		}
		if err := r.dotGit.WriteReference(plumbing.NewReference(plumbing.RemoteRefName(DefaultRemoteName, branch), ref.Oid)); err != nil {
			return xerrors.Errorf("could not write remote-tracking branch %s: %w", branch, err)
		}

		if hasHead && ref.Oid == head.Oid {
			remoteHead := plumbing.NewSymbolicReference(
				plumbing.RemoteHeadRefName(DefaultRemoteName),
				plumbing.RemoteRefName(DefaultRemoteName, branch),
			)
			if err := r.dotGit.WriteReference(remoteHead); err != nil {
				return xerrors.Errorf("could not write remote HEAD: %w", err)
			}
		}
	}

	return nil
}

// defaultBranchAndHead returns the branch HEAD resolves to on the remote,
// and the commit Oid it points at, writing the local HEAD symbolic
// reference to match.
func (r *Repository) defaultBranchAndHead(refs *transport.Refs) (branch string, oid plumbing.Oid, err error) {
	head, ok := refs.HEADRef()
	if !ok {
		return "", plumbing.NullOid, xerrors.Errorf("remote did not advertise HEAD")
	}

	for _, ref := range refs.List {
		if ref.Name == plumbing.HEAD {
			continue
		}
		if ref.Oid == head.Oid {
			if b, ok := branchFromRefName(ref.Name); ok {
				if err := r.dotGit.WriteReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.LocalBranchRefName(b))); err != nil {
					return "", plumbing.NullOid, xerrors.Errorf("could not write HEAD: %w", err)
				}
				return b, head.Oid, nil
			}
		}
	}

	return "", plumbing.NullOid, xerrors.Errorf("could not determine remote's default branch")
}

// branchFromRefName returns the branch name out of a "refs/heads/<branch>"
// ref name.
func branchFromRefName(name string) (string, bool) {
	const prefix = "refs/heads/"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return "", false
	}
	return name[len(prefix):], true
}

// String implements fmt.Stringer for debugging.
func (r *Repository) String() string {
	return fmt.Sprintf("Repository{root: %s}", r.repoRoot)
}
