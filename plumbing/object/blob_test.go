package object_test

import (
	"testing"

	"github.com/kelmin/ugit/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobRoundtrip(t *testing.T) {
	o := object.New(object.TypeBlob, []byte("package main\n"))
	oid, compressed, err := o.Compress()
	require.NoError(t, err)

	decoded, err := object.Decompress(compressed)
	require.NoError(t, err)
	blob := decoded.AsBlob()

	assert.Equal(t, oid, blob.ID)
	assert.Equal(t, object.TypeBlob, blob.Type())
	assert.Equal(t, []byte("package main\n"), blob.Bytes())
}
