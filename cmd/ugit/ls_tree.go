package main

import (
	"fmt"
	"io"

	"github.com/kelmin/ugit/internal/errutil"
	"github.com/kelmin/ugit/plumbing"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newLsTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree --name-only <tree>",
		Short: "list the entries of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	nameOnly := cmd.Flags().Bool("name-only", false, "list only filenames")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsTreeCmd(cmd.OutOrStdout(), cfg, args[0], *nameOnly)
	}

	return cmd
}

func lsTreeCmd(out io.Writer, cfg *globalFlags, objectName string, nameOnly bool) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := plumbing.NewOidFromStr(objectName)
	if err != nil {
		return xerrors.Errorf("not a valid object name %s: %w", objectName, err)
	}

	o, err := r.GetObject(oid)
	if err != nil {
		return err
	}

	tree, err := o.AsTree()
	if err != nil {
		return xerrors.Errorf("%s is not a tree: %w", objectName, err)
	}

	for _, e := range tree.Entries {
		if nameOnly {
			fmt.Fprintln(out, e.Path)
			continue
		}
		fmt.Fprintf(out, "%06o %s\t%s\n", e.Mode, e.ID.String(), e.Path)
	}
	return nil
}
