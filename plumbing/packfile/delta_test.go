package packfile_test

import (
	"bytes"
	"testing"

	"github.com/kelmin/ugit/plumbing/packfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDeltaCopyAndInsert(t *testing.T) {
	base := []byte("0123456789")

	var delta bytes.Buffer
	writeDeltaSize(&delta, len(base))
	writeDeltaSize(&delta, 7)

	// COPY bytes [2:6) -> "2345", offset needs 1 byte, length needs 1 byte
	delta.WriteByte(0b_1001_0001) // MSB | lenInfo bit0 | offsetInfo bit0
	delta.WriteByte(2)            // offset low byte
	delta.WriteByte(4)            // length

	// INSERT "xyz"
	delta.WriteByte(3)
	delta.Write([]byte("xyz"))

	out, err := packfile.ApplyDelta(base, delta.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "2345xyz", string(out))
}

func TestApplyDeltaBaseSizeMismatch(t *testing.T) {
	base := []byte("0123456789")

	var delta bytes.Buffer
	writeDeltaSize(&delta, len(base)+1)
	writeDeltaSize(&delta, 0)

	_, err := packfile.ApplyDelta(base, delta.Bytes())
	require.Error(t, err)
}

func TestApplyDeltaTargetSizeMismatch(t *testing.T) {
	base := []byte("0123456789")

	var delta bytes.Buffer
	writeDeltaSize(&delta, len(base))
	writeDeltaSize(&delta, 99)
	delta.WriteByte(3)
	delta.Write([]byte("abc"))

	_, err := packfile.ApplyDelta(base, delta.Bytes())
	require.Error(t, err)
}

func TestApplyDeltaZeroInstructionIsRejected(t *testing.T) {
	base := []byte("0123456789")

	var delta bytes.Buffer
	writeDeltaSize(&delta, len(base))
	writeDeltaSize(&delta, 0)
	delta.WriteByte(0)

	_, err := packfile.ApplyDelta(base, delta.Bytes())
	require.Error(t, err)
}
