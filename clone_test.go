package ugit_test

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	ugit "github.com/kelmin/ugit"
	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/plumbing/object"
	"github.com/kelmin/ugit/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEntryHeader encodes a packfile entry's type+size header, mirroring
// plumbing/packfile's own test helper: MSB continuation, 3 type bits then
// 4 size bits in the first byte, 7 size bits per byte after.
func writeEntryHeader(buf *bytes.Buffer, typ object.Type, size int) {
	first := byte(typ) << 4
	rest := uint64(size) >> 4
	low := byte(size) & 0b_0000_1111
	if rest > 0 {
		first |= 0b_1000_0000
	}
	first |= low
	buf.WriteByte(first)

	for rest > 0 {
		b := byte(rest & 0b_0111_1111)
		rest >>= 7
		if rest > 0 {
			b |= 0b_1000_0000
		}
		buf.WriteByte(b)
	}
}

func writeZlib(buf *bytes.Buffer, data []byte) {
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(data); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
}

func packHeader(count uint32) []byte {
	return []byte{
		'P', 'A', 'C', 'K',
		0, 0, 0, 2,
		byte(count >> 24), byte(count >> 16), byte(count >> 8), byte(count),
	}
}

// buildTestPack builds a minimal, real pack holding a commit, its tree, and
// one blob: "hello.txt" containing "hello\n".
func buildTestPack(t *testing.T) (packBytes []byte, commitOID plumbing.Oid) {
	t.Helper()

	blob := object.New(object.TypeBlob, []byte("hello\n"))
	blobOID, _, err := blob.Compress()
	require.NoError(t, err)

	tree := object.NewTree([]*object.TreeEntry{
		{Mode: object.ModeFile, Path: "hello.txt", ID: blobOID},
	})
	treeObj, err := tree.ToObject()
	require.NoError(t, err)
	treeOID, _, err := treeObj.Compress()
	require.NoError(t, err)

	commit := object.NewCommit(treeOID, object.NewSignature("Test", "test@example.com"), &object.CommitOptions{
		Message: "initial commit\n",
	})
	commitObj, err := commit.ToObject()
	require.NoError(t, err)
	cOID, _, err := commitObj.Compress()
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(packHeader(3))

	writeEntryHeader(&buf, object.TypeBlob, len(blob.Bytes()))
	writeZlib(&buf, blob.Bytes())

	writeEntryHeader(&buf, object.TypeTree, len(treeObj.Bytes()))
	writeZlib(&buf, treeObj.Bytes())

	writeEntryHeader(&buf, object.TypeCommit, len(commitObj.Bytes()))
	writeZlib(&buf, commitObj.Bytes())

	return buf.Bytes(), cOID
}

func TestClone(t *testing.T) {
	packBytes, commitOID := buildTestPack(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/info/refs":
			var buf bytes.Buffer
			buf.Write(transport.EncodePktLine([]byte("# service=git-upload-pack\n")))
			buf.Write(transport.FlushPkt)
			buf.Write(transport.EncodePktLine([]byte(fmt.Sprintf("%s HEAD\x00agent=test\n", commitOID.String()))))
			buf.Write(transport.EncodePktLine([]byte(fmt.Sprintf("%s refs/heads/master\n", commitOID.String()))))
			buf.Write(transport.FlushPkt)
			w.Write(buf.Bytes())
		case "/git-upload-pack":
			w.Write(transport.EncodePktLine([]byte("NAK\n")))
			w.Write(packBytes)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "clone")
	r, err := ugit.Clone(srv.URL, dest)
	require.NoError(t, err)
	defer r.Close()

	head, err := r.GetReference(plumbing.HEAD)
	require.NoError(t, err)
	assert.Equal(t, commitOID, head.Target())

	branch, err := r.GetReference(plumbing.LocalBranchRefName("master"))
	require.NoError(t, err)
	assert.Equal(t, commitOID, branch.Target())

	content, err := ioutil.ReadFile(filepath.Join(dest, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}
