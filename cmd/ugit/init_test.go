package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()

	out := bytes.NewBufferString("")
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"-C", dir, "init"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), filepath.Join(dir, ".git"))
	assert.DirExists(t, filepath.Join(dir, ".git", "objects"))
}

func TestInitCmdTwiceFails(t *testing.T) {
	dir := t.TempDir()

	cmd := newRootCmd()
	cmd.SetOut(bytes.NewBufferString(""))
	cmd.SetArgs([]string{"-C", dir, "init"})
	require.NoError(t, cmd.Execute())

	cmd2 := newRootCmd()
	cmd2.SetOut(bytes.NewBufferString(""))
	cmd2.SetArgs([]string{"-C", dir, "init"})
	require.Error(t, cmd2.Execute())
}
