package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTreeCmd(t *testing.T) {
	repoDir := t.TempDir()

	initCmd := newRootCmd()
	initCmd.SetOut(bytes.NewBufferString(""))
	initCmd.SetArgs([]string{"-C", repoDir, "init"})
	require.NoError(t, initCmd.Execute())

	require.NoError(t, ioutil.WriteFile(filepath.Join(repoDir, "a.txt"), []byte("A\n"), 0o644))

	out := bytes.NewBufferString("")
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"-C", repoDir, "write-tree"})

	require.NoError(t, cmd.Execute())
	assert.Len(t, out.String(), 41) // 40 hex chars + trailing newline
}
