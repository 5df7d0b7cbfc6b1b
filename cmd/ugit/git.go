package main

import (
	"os"

	"github.com/kelmin/ugit/internal/pathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags holds the flags shared by every subcommand.
type globalFlags struct {
	// C is the working directory to run as if ugit had been started in,
	// the same -C flag mainstream git exposes.
	C pflag.Value
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ugit",
		Short:         "minimal, interoperable git client",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cfg := &globalFlags{
		C: newDirPathFlag(cwd),
	}
	cmd.PersistentFlags().VarP(cfg.C, "C", "C", "Run as if ugit was started in the provided path instead of the current working directory.")

	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newCatFileCmd(cfg))
	cmd.AddCommand(newHashObjectCmd(cfg))
	cmd.AddCommand(newLsTreeCmd(cfg))
	cmd.AddCommand(newWriteTreeCmd(cfg))
	cmd.AddCommand(newCommitTreeCmd(cfg))
	cmd.AddCommand(newCloneCmd())

	return cmd
}

// dirPathFlag is a pflag.Value that stores a directory path.
type dirPathFlag struct {
	value string
}

func newDirPathFlag(def string) *dirPathFlag {
	return &dirPathFlag{value: def}
}

func (f *dirPathFlag) String() string { return f.value }
func (f *dirPathFlag) Type() string   { return "path" }

func (f *dirPathFlag) Set(s string) error {
	f.value = s
	return nil
}

// repoRoot resolves the repository root from cfg.C, walking up from it the
// way pathutil.RepoRootFromPath does.
func repoRoot(cfg *globalFlags) (string, error) {
	return pathutil.RepoRootFromPath(cfg.C.String())
}
