package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitTreeCmd(t *testing.T) {
	repoDir := t.TempDir()

	initCmd := newRootCmd()
	initCmd.SetOut(bytes.NewBufferString(""))
	initCmd.SetArgs([]string{"-C", repoDir, "init"})
	require.NoError(t, initCmd.Execute())

	require.NoError(t, ioutil.WriteFile(filepath.Join(repoDir, "a.txt"), []byte("A\n"), 0o644))

	treeOut := bytes.NewBufferString("")
	treeCmd := newRootCmd()
	treeCmd.SetOut(treeOut)
	treeCmd.SetArgs([]string{"-C", repoDir, "write-tree"})
	require.NoError(t, treeCmd.Execute())
	treeOID := strings.TrimSpace(treeOut.String())

	out := bytes.NewBufferString("")
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"-C", repoDir, "commit-tree", treeOID, "-m", "initial commit\n"})

	require.NoError(t, cmd.Execute())
	commitOID := strings.TrimSpace(out.String())
	assert.Len(t, commitOID, 40)

	catOut := bytes.NewBufferString("")
	catCmd := newRootCmd()
	catCmd.SetOut(catOut)
	catCmd.SetArgs([]string{"-C", repoDir, "cat-file", "-p", commitOID})
	require.NoError(t, catCmd.Execute())
	assert.Contains(t, catOut.String(), "initial commit")
	assert.Contains(t, catOut.String(), treeOID)
}

func TestCommitTreeCmdWithParent(t *testing.T) {
	repoDir := t.TempDir()

	initCmd := newRootCmd()
	initCmd.SetOut(bytes.NewBufferString(""))
	initCmd.SetArgs([]string{"-C", repoDir, "init"})
	require.NoError(t, initCmd.Execute())

	treeOut := bytes.NewBufferString("")
	treeCmd := newRootCmd()
	treeCmd.SetOut(treeOut)
	treeCmd.SetArgs([]string{"-C", repoDir, "write-tree"})
	require.NoError(t, treeCmd.Execute())
	treeOID := strings.TrimSpace(treeOut.String())

	firstOut := bytes.NewBufferString("")
	firstCmd := newRootCmd()
	firstCmd.SetOut(firstOut)
	firstCmd.SetArgs([]string{"-C", repoDir, "commit-tree", treeOID, "-m", "first\n"})
	require.NoError(t, firstCmd.Execute())
	firstOID := strings.TrimSpace(firstOut.String())

	secondOut := bytes.NewBufferString("")
	secondCmd := newRootCmd()
	secondCmd.SetOut(secondOut)
	secondCmd.SetArgs([]string{"-C", repoDir, "commit-tree", treeOID, "-p", firstOID, "-m", "second\n"})
	require.NoError(t, secondCmd.Execute())

	catOut := bytes.NewBufferString("")
	catCmd := newRootCmd()
	catCmd.SetOut(catOut)
	catCmd.SetArgs([]string{"-C", repoDir, "cat-file", "-p", strings.TrimSpace(secondOut.String())})
	require.NoError(t, catCmd.Execute())
	assert.Contains(t, catOut.String(), "parent "+firstOID)
}
