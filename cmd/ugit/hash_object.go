package main

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/kelmin/ugit/internal/errutil"
	"github.com/kelmin/ugit/plumbing/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object -w <path>",
		Short: "compute an object's id and optionally persist it",
		Args:  cobra.ExactArgs(1),
	}

	write := cmd.Flags().BoolP("write", "w", false, "persist the object to the database")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *globalFlags, filePath string, write bool) (err error) {
	content, err := ioutil.ReadFile(filePath)
	if err != nil {
		return err
	}

	o := object.New(object.TypeBlob, content)

	if !write {
		_, _, err := o.Compress()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, o.ID.String())
		return nil
	}

	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := r.WriteObject(o)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, oid.String())
	return nil
}
