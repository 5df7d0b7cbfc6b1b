package fsbackend

import (
	"path/filepath"

	"github.com/kelmin/ugit/backend"
	"github.com/kelmin/ugit/internal/gitpath"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// setDefaultCfg writes the default .git/config for a freshly initialized
// repository.
func (b *Backend) setDefaultCfg() error {
	cfg := ini.Empty()

	core, err := cfg.NewSection(backend.CfgCore)
	if err != nil {
		return xerrors.Errorf("could not create core section: %w", err)
	}
	coreCfg := map[string]string{
		backend.CfgCoreFormatVersion:     backend.SupportedRepoFormatVersion,
		backend.CfgCoreFileMode:          "true",
		backend.CfgCoreBare:              "false",
		backend.CfgCoreLogAllRefUpdates:  "true",
		backend.CfgCoreIgnoreCase:        "false",
		backend.CfgCorePrecomposeUnicode: "false",
	}
	for k, v := range coreCfg {
		if _, err := core.NewKey(k, v); err != nil {
			return xerrors.Errorf("could not set %s: %w", k, err)
		}
	}

	return cfg.SaveTo(filepath.Join(b.root, gitpath.ConfigPath))
}

// SetRemote records a remote's URL and its default fetch refspec in
// .git/config, the way `git clone` does for "origin".
func (b *Backend) SetRemote(name, url string) error {
	cfgPath := filepath.Join(b.root, gitpath.ConfigPath)
	cfg, err := ini.Load(cfgPath)
	if err != nil {
		return xerrors.Errorf("could not load config: %w", err)
	}

	section, err := cfg.NewSection(backend.CfgRemote + " \"" + name + "\"")
	if err != nil {
		return xerrors.Errorf("could not create remote section: %w", err)
	}
	if _, err := section.NewKey(backend.CfgRemoteURL, url); err != nil {
		return xerrors.Errorf("could not set remote url: %w", err)
	}
	fetch := "+refs/heads/*:refs/remotes/" + name + "/*"
	if _, err := section.NewKey(backend.CfgRemoteFetch, fetch); err != nil {
		return xerrors.Errorf("could not set remote fetch refspec: %w", err)
	}

	return cfg.SaveTo(cfgPath)
}

// RepoFormatVersion reads core.repositoryformatversion from .git/config.
func (b *Backend) RepoFormatVersion() (string, error) {
	cfgPath := filepath.Join(b.root, gitpath.ConfigPath)
	cfg, err := ini.Load(cfgPath)
	if err != nil {
		return "", xerrors.Errorf("could not load config at %s: %w", cfgPath, err)
	}

	key := cfg.Section(backend.CfgCore).Key(backend.CfgCoreFormatVersion)
	return key.String(), nil
}

// SetBranchUpstream records that branch tracks remote/branch, the way
// `git clone` sets up the default branch's upstream.
func (b *Backend) SetBranchUpstream(branch, remote string) error {
	cfgPath := filepath.Join(b.root, gitpath.ConfigPath)
	cfg, err := ini.Load(cfgPath)
	if err != nil {
		return xerrors.Errorf("could not load config: %w", err)
	}

	section, err := cfg.NewSection(backend.CfgBranch + " \"" + branch + "\"")
	if err != nil {
		return xerrors.Errorf("could not create branch section: %w", err)
	}
	if _, err := section.NewKey(backend.CfgBranchRemote, remote); err != nil {
		return xerrors.Errorf("could not set branch remote: %w", err)
	}
	merge := "refs/heads/" + branch
	if _, err := section.NewKey(backend.CfgBranchMerge, merge); err != nil {
		return xerrors.Errorf("could not set branch merge ref: %w", err)
	}

	return cfg.SaveTo(cfgPath)
}
