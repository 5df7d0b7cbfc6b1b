package main

import (
	"fmt"
	"io"

	ugit "github.com/kelmin/ugit"
	"github.com/kelmin/ugit/internal/errutil"
	"github.com/kelmin/ugit/plumbing"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCommitTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-tree <tree> -m <message>",
		Short: "create a commit object from a tree",
		Args:  cobra.ExactArgs(1),
	}

	parent := cmd.Flags().StringP("parent", "p", "", "id of the parent commit")
	message := cmd.Flags().StringP("message", "m", "", "commit message")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitTreeCmd(cmd.OutOrStdout(), cfg, args[0], *parent, *message)
	}

	return cmd
}

func commitTreeCmd(out io.Writer, cfg *globalFlags, treeName, parentName, message string) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	treeOID, err := plumbing.NewOidFromStr(treeName)
	if err != nil {
		return xerrors.Errorf("not a valid tree id %s: %w", treeName, err)
	}

	opts := ugit.CommitTreeOptions{Message: message}
	if parentName != "" {
		parentOID, err := plumbing.NewOidFromStr(parentName)
		if err != nil {
			return xerrors.Errorf("not a valid parent id %s: %w", parentName, err)
		}
		opts.ParentID = parentOID
	}

	oid, err := r.CommitTree(treeOID, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, oid.String())
	return nil
}
