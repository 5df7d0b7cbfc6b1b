package ugit_test

import (
	"testing"

	ugit "github.com/kelmin/ugit"
	"github.com/kelmin/ugit/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitTree(t *testing.T) {
	dir := t.TempDir()
	r, err := ugit.InitRepository(dir)
	require.NoError(t, err)
	defer r.Close()

	treeOID, err := r.WriteTree()
	require.NoError(t, err)

	oid, err := r.CommitTree(treeOID, ugit.CommitTreeOptions{
		Message: "initial commit\n",
	})
	require.NoError(t, err)
	assert.False(t, oid.IsZero())

	o, err := r.GetObject(oid)
	require.NoError(t, err)
	c, err := o.AsCommit()
	require.NoError(t, err)

	assert.Equal(t, treeOID, c.TreeID())
	assert.Empty(t, c.ParentIDs())
	assert.Equal(t, "initial commit\n", c.Message())
}

func TestCommitTreeWithParent(t *testing.T) {
	dir := t.TempDir()
	r, err := ugit.InitRepository(dir)
	require.NoError(t, err)
	defer r.Close()

	treeOID, err := r.WriteTree()
	require.NoError(t, err)

	first, err := r.CommitTree(treeOID, ugit.CommitTreeOptions{Message: "first\n"})
	require.NoError(t, err)

	second, err := r.CommitTree(treeOID, ugit.CommitTreeOptions{
		Message:  "second\n",
		ParentID: first,
		Author:   object.NewSignature("Test", "test@example.com"),
	})
	require.NoError(t, err)

	o, err := r.GetObject(second)
	require.NoError(t, err)
	c, err := o.AsCommit()
	require.NoError(t, err)

	require.Len(t, c.ParentIDs(), 1)
	assert.Equal(t, first, c.ParentIDs()[0])
	assert.Equal(t, "Test", c.Author().Name)
}
