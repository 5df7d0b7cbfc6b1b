package main

import (
	"fmt"
	"io"

	ugit "github.com/kelmin/ugit"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "create an empty git repository",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return initCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *globalFlags) error {
	dir := cfg.C.String()

	r, err := ugit.InitRepository(dir)
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Fprintf(out, "Initialized empty Git repository in %s\n", r.DotGitPath())
	return nil
}
