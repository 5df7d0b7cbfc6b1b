package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashObjectCmd(t *testing.T) {
	t.Run("without -w just prints the id", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "file.txt")
		require.NoError(t, ioutil.WriteFile(path, []byte("hello\n"), 0o644))

		out := bytes.NewBufferString("")
		cmd := newRootCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"hash-object", path})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a\n", out.String())
	})

	t.Run("with -w persists the object", func(t *testing.T) {
		repoDir := t.TempDir()
		initCmd := newRootCmd()
		initCmd.SetOut(bytes.NewBufferString(""))
		initCmd.SetArgs([]string{"-C", repoDir, "init"})
		require.NoError(t, initCmd.Execute())

		path := filepath.Join(repoDir, "file.txt")
		require.NoError(t, ioutil.WriteFile(path, []byte("hello\n"), 0o644))

		out := bytes.NewBufferString("")
		cmd := newRootCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"-C", repoDir, "hash-object", "-w", path})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a\n", out.String())

		assert.FileExists(t, filepath.Join(repoDir, ".git", "objects", "ce", "013625030ba8dba906f756967f9e9ca394464a"))
	})
}
