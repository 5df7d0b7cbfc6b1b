package ugit_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	ugit "github.com/kelmin/ugit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTree(t *testing.T) {
	dir := t.TempDir()
	r, err := ugit.InitRepository(dir)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a"), []byte("A\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "b"), []byte("B\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "sub", "c"), []byte("C\n"), 0o644))

	oid, err := r.WriteTree()
	require.NoError(t, err)
	assert.False(t, oid.IsZero())

	o, err := r.GetObject(oid)
	require.NoError(t, err)
	tree, err := o.AsTree()
	require.NoError(t, err)

	var names []string
	for _, e := range tree.Entries {
		names = append(names, e.Path)
	}
	assert.Equal(t, []string{"a", "b", "sub"}, names)
}

func TestWriteTreeSkipsGitignoredEntries(t *testing.T) {
	dir := t.TempDir()
	r, err := ugit.InitRepository(dir)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "keep.txt"), []byte("keep\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "build.log"), []byte("log\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, ".gitignore"), []byte("build.log\n"), 0o644))

	oid, err := r.WriteTree()
	require.NoError(t, err)

	o, err := r.GetObject(oid)
	require.NoError(t, err)
	tree, err := o.AsTree()
	require.NoError(t, err)

	var names []string
	for _, e := range tree.Entries {
		names = append(names, e.Path)
	}
	assert.Contains(t, names, "keep.txt")
	assert.Contains(t, names, ".gitignore")
	assert.NotContains(t, names, "build.log")
}

func TestWriteTreeGitignoreMatchIsNotBidirectional(t *testing.T) {
	dir := t.TempDir()
	r, err := ugit.InitRepository(dir)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "build.log"), []byte("log\n"), 0o644))
	// ".log" is a substring of "build.log", but "build.log" is not a
	// substring of ".log" — the ignore file content must contain the
	// entry's full name, not the other way around.
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".log\n"), 0o644))

	oid, err := r.WriteTree()
	require.NoError(t, err)

	o, err := r.GetObject(oid)
	require.NoError(t, err)
	tree, err := o.AsTree()
	require.NoError(t, err)

	var names []string
	for _, e := range tree.Entries {
		names = append(names, e.Path)
	}
	assert.Contains(t, names, "build.log")
}

func TestWriteTreeIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	r, err := ugit.InitRepository(dir)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a"), []byte("A\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "b"), []byte("B\n"), 0o644))

	oid1, err := r.WriteTree()
	require.NoError(t, err)
	oid2, err := r.WriteTree()
	require.NoError(t, err)
	assert.Equal(t, oid1, oid2)
}
