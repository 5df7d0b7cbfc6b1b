package packfile

import (
	"encoding/binary"
	"errors"

	"golang.org/x/xerrors"
)

// errDeltaInvalid is returned when a delta instruction stream is malformed
// or disagrees with its own declared base size.
var errDeltaInvalid = errors.New("invalid delta instruction stream")

// ApplyDelta reconstructs a target object's payload from a base payload and
// a git delta instruction stream.
//
// The stream starts with two variable-length sizes (source size, target
// size) followed by a sequence of COPY and INSERT instructions:
//   - COPY has its MSB set; the low 4 bits say which of the next bytes hold
//     a little-endian offset into the base, the next 3 bits say which of
//     the following bytes hold a little-endian copy length.
//   - INSERT has its MSB unset; the byte itself is the number of literal
//     bytes that follow it, to append as-is.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	sourceSize, n, err := decodeDeltaSize(delta)
	if err != nil {
		return nil, xerrors.Errorf("could not read source size: %w", err)
	}
	if int(sourceSize) != len(base) {
		return nil, xerrors.Errorf("base size mismatch: delta expects %d, got %d: %w", sourceSize, len(base), errDeltaInvalid)
	}

	targetSize, m, err := decodeDeltaSize(delta[n:])
	if err != nil {
		return nil, xerrors.Errorf("could not read target size: %w", err)
	}

	instructions := delta[n+m:]
	out := make([]byte, 0, targetSize)

	for i := 0; i < len(instructions); i++ {
		instr := instructions[i]

		if isMSBSet(instr) {
			offset, offsetBytesRead, err := readCopyArg(instructions, i+1, uint(instr&0b_0000_1111), 4)
			if err != nil {
				return nil, err
			}
			i += offsetBytesRead

			length, lengthBytesRead, err := readCopyArg(instructions, i+1, uint((instr&0b_0111_0000)>>4), 3)
			if err != nil {
				return nil, err
			}
			i += lengthBytesRead

			// a zero-encoded copy length means the maximum chunk size,
			// 0x10000, per the pack format spec.
			if length == 0 {
				length = 0x10000
			}
			if int(offset+length) > len(base) {
				return nil, xerrors.Errorf("copy instruction out of range: %w", errDeltaInvalid)
			}
			out = append(out, base[offset:offset+length]...)
			continue
		}

		if instr == 0 {
			return nil, xerrors.Errorf("zero instruction byte is reserved: %w", errDeltaInvalid)
		}

		// INSERT: instr itself is the literal length.
		start := i + 1
		end := start + int(instr)
		if end > len(instructions) {
			return nil, xerrors.Errorf("insert instruction out of range: %w", errDeltaInvalid)
		}
		out = append(out, instructions[start:end]...)
		i += int(instr)
	}

	if len(out) != int(targetSize) {
		return nil, xerrors.Errorf("target size mismatch: delta announced %d, produced %d: %w", targetSize, len(out), errDeltaInvalid)
	}

	return out, nil
}

// readCopyArg reads the variable-width little-endian argument (offset or
// length) of a COPY instruction. bitCount says how many of the low bits of
// the selector are meaningful (4 for the offset, 3 for the length); each
// set bit means one more byte of the argument is present in the stream.
func readCopyArg(instructions []byte, start int, selector uint, bitCount uint) (value uint32, bytesRead int, err error) {
	argBytes := make([]byte, 4)
	for j := uint(0); j < bitCount; j++ {
		if (selector>>j)&1 == 1 {
			if start+bytesRead >= len(instructions) {
				return 0, 0, xerrors.Errorf("copy argument out of range: %w", errDeltaInvalid)
			}
			argBytes[j] = instructions[start+bytesRead]
			bytesRead++
		}
	}
	return binary.LittleEndian.Uint32(argBytes), bytesRead, nil
}

// decodeDeltaSize reads a delta header size: a plain little-endian
// variable-length integer, 7 bits per byte, MSB marking continuation. This
// differs from an object entry's header size only in that there's no
// leading type tag to steal 3 bits from the first byte.
func decodeDeltaSize(data []byte) (size uint64, bytesRead int, err error) {
	for i, b := range data {
		bytesRead++
		size |= uint64(unsetMSB(b)) << (uint(i) * 7)
		if !isMSBSet(b) {
			return size, bytesRead, nil
		}
		if i >= 9 {
			return 0, 0, ErrIntOverflow
		}
	}
	return 0, 0, xerrors.Errorf("truncated delta size: %w", errDeltaInvalid)
}
