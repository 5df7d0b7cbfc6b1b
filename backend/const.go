package backend

// .git/config keys.
const (
	CfgCore                  = "core"
	CfgCoreFormatVersion     = "repositoryformatversion"
	CfgCoreFileMode          = "filemode"
	CfgCoreBare              = "bare"
	CfgCoreLogAllRefUpdates  = "logallrefupdates"
	CfgCoreIgnoreCase        = "ignorecase"
	CfgCorePrecomposeUnicode = "precomposeunicode"
	CfgRemote                = "remote"
	CfgRemoteURL             = "url"
	CfgRemoteFetch           = "fetch"
	CfgBranch                = "branch"
	CfgBranchRemote          = "remote"
	CfgBranchMerge           = "merge"
)

// SupportedRepoFormatVersion is the only `core.repositoryformatversion`
// value this client understands. git itself refuses to operate on a
// repository with a format version it doesn't recognize; ugit does the
// same on open.
const SupportedRepoFormatVersion = "0"
