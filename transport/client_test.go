package transport_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kelmin/ugit/plumbing"
	"github.com/kelmin/ugit/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	commitOID = "e5b9e846e1b468bc9597ff95d71dfacda8bd54e3"
	treeOID   = "bbb720a96e4c29b9950a4c577c98470a4d5dd089"
)

func infoRefsBody() []byte {
	var buf bytes.Buffer
	buf.Write(transport.EncodePktLine([]byte("# service=git-upload-pack\n")))
	buf.Write(transport.FlushPkt)

	first := fmt.Sprintf("%s HEAD\x00ofs-delta agent=test\n", commitOID)
	buf.Write(transport.EncodePktLine([]byte(first)))

	second := fmt.Sprintf("%s refs/heads/master\n", commitOID)
	buf.Write(transport.EncodePktLine([]byte(second)))

	buf.Write(transport.FlushPkt)
	return buf.Bytes()
}

func TestGetRefs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info/refs", r.URL.Path)
		assert.Equal(t, "git-upload-pack", r.URL.Query().Get("service"))
		w.Write(infoRefsBody())
	}))
	defer srv.Close()

	c := transport.NewClient(srv.URL)
	refs, err := c.GetRefs()
	require.NoError(t, err)

	require.Len(t, refs.List, 2)
	assert.Contains(t, refs.Capabilities, "ofs-delta")

	head, ok := refs.HEADRef()
	require.True(t, ok)
	wantOID, err := plumbing.NewOidFromStr(commitOID)
	require.NoError(t, err)
	assert.Equal(t, wantOID, head.Oid)

	assert.Equal(t, "refs/heads/master", refs.List[1].Name)
}

func TestGetRefsUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := transport.NewClient(srv.URL)
	_, err := c.GetRefs()
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrUnexpectedStatus)
}

func TestFetchPackSkipsPreludeLines(t *testing.T) {
	packBytes := []byte("PACK\x00\x00\x00\x02\x00\x00\x00\x00fake-pack-body")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/git-upload-pack", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "want "+commitOID)
		assert.Contains(t, string(body), "done\n")

		w.Write(transport.EncodePktLine([]byte("NAK\n")))
		w.Write(packBytes)
	}))
	defer srv.Close()

	oid, err := plumbing.NewOidFromStr(commitOID)
	require.NoError(t, err)

	c := transport.NewClient(srv.URL)
	rc, err := c.FetchPack([]plumbing.Oid{oid})
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, packBytes, got)
}
