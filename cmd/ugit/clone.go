package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	ugit "github.com/kelmin/ugit"
	"github.com/kelmin/ugit/internal/errutil"
	"github.com/spf13/cobra"
)

func newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <url> [<dir>]",
		Short: "clone a remote repository",
		Args:  cobra.RangeArgs(1, 2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dest := ""
		if len(args) == 2 {
			dest = args[1]
		}
		return cloneCmd(cmd.OutOrStdout(), args[0], dest)
	}

	return cmd
}

func cloneCmd(out io.Writer, url, dest string) (err error) {
	if dest == "" {
		dest = dirNameFromURL(url)
	}

	r, err := ugit.Clone(url, dest)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	fmt.Fprintf(out, "Cloning into %s...\n", dest)
	return nil
}

// dirNameFromURL derives the target directory name from a remote URL, the
// way mainstream git strips a trailing ".git" off the last path segment.
func dirNameFromURL(url string) string {
	name := filepath.Base(strings.TrimSuffix(url, "/"))
	return strings.TrimSuffix(name, ".git")
}
