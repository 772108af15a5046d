package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeDataBlocks concatenates blocks into one data-segment blob, each preceded by a little-
// endian u16 size prefix, per section 6.1's "each data block is preceded by a u16 size prefix
// inside this blob".
func EncodeDataBlocks(blocks [][]byte) ([]byte, error) {
	var buf bytes.Buffer

	for i, b := range blocks {
		if len(b) > 0xffff {
			return nil, fmt.Errorf("binfmt: data block %d too large for u16 prefix: %d bytes", i, len(b))
		}

		if err := binary.Write(&buf, binary.LittleEndian, uint16(len(b))); err != nil {
			return nil, err
		}

		if _, err := buf.Write(b); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// DecodeDataBlocks splits a data-segment blob back into its size-prefixed blocks, in order.
func DecodeDataBlocks(blob []byte) ([][]byte, error) {
	r := bytes.NewReader(blob)

	var blocks [][]byte

	for r.Len() > 0 {
		var size uint16
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("%w: data block size prefix: %w", ErrTruncated, err)
		}

		block := make([]byte, size)
		if _, err := readFull(r, block); err != nil {
			return nil, fmt.Errorf("%w: data block body: %w", ErrTruncated, err)
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}
