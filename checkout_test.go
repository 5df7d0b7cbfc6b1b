package ugit_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	ugit "github.com/kelmin/ugit"
	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	srcDir := t.TempDir()
	src, err := ugit.InitRepository(srcDir)
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, ioutil.WriteFile(filepath.Join(srcDir, "a"), []byte("A\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "sub"), 0o755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(srcDir, "sub", "b"), []byte("B\n"), 0o644))

	treeOID, err := src.WriteTree()
	require.NoError(t, err)
	commitOID, err := src.CommitTree(treeOID, ugit.CommitTreeOptions{Message: "msg\n"})
	require.NoError(t, err)

	dstDir := t.TempDir()
	dst, err := ugit.InitRepository(dstDir)
	require.NoError(t, err)
	defer dst.Close()

	// Copy the commit and everything it transitively references over,
	// the way a clone would after resolving a pack, since Checkout only
	// reads from its own repository's object store.
	require.NoError(t, copyCommitClosure(src, dst, commitOID))

	require.NoError(t, ugit.Checkout(dst, commitOID))

	content, err := ioutil.ReadFile(filepath.Join(dstDir, "a"))
	require.NoError(t, err)
	assert.Equal(t, "A\n", string(content))

	content, err = ioutil.ReadFile(filepath.Join(dstDir, "sub", "b"))
	require.NoError(t, err)
	assert.Equal(t, "B\n", string(content))
}

func copyCommitClosure(src, dst *ugit.Repository, commitOID plumbing.Oid) error {
	o, err := src.GetObject(commitOID)
	if err != nil {
		return err
	}
	if _, err := dst.WriteObject(o); err != nil {
		return err
	}

	c, err := o.AsCommit()
	if err != nil {
		return err
	}
	return copyTreeClosure(src, dst, c.TreeID())
}

func copyTreeClosure(src, dst *ugit.Repository, treeOID plumbing.Oid) error {
	o, err := src.GetObject(treeOID)
	if err != nil {
		return err
	}
	if _, err := dst.WriteObject(o); err != nil {
		return err
	}

	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	for _, e := range tree.Entries {
		entryObj, err := src.GetObject(e.ID)
		if err != nil {
			return err
		}
		if e.Mode == object.ModeDir {
			if err := copyTreeClosure(src, dst, e.ID); err != nil {
				return err
			}
			continue
		}
		if _, err := dst.WriteObject(entryObj); err != nil {
			return err
		}
	}
	return nil
}
