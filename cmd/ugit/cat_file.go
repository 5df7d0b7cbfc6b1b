package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/kelmin/ugit/internal/errutil"
	"github.com/kelmin/ugit/plumbing"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCatFileCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat-file -p <object>",
		Short: "print the payload of an object",
		Args:  cobra.ExactArgs(1),
	}

	prettyPrint := cmd.Flags().BoolP("pretty-print", "p", false, "print the content of the object")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !*prettyPrint {
			return errors.New("-p is required")
		}
		return catFileCmd(cmd.OutOrStdout(), cfg, args[0])
	}

	return cmd
}

func catFileCmd(out io.Writer, cfg *globalFlags, objectName string) (err error) {
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

	fmt.Fprint(out, string(o.Bytes()))
	return nil
}
