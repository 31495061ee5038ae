package network

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// maxFrameSize bounds a single request or response.
	maxFrameSize = 64 << 10

	// framePrefixSize is the size of the big-endian length prefix.
	framePrefixSize = 4
)

// writeFrame writes [4B length][payload].
func writeFrame(w io.Writer, payload []byte) error {
	if len(payload) > maxFrameSize {
		return fmt.Errorf("frame too large: %d > %d", len(payload), maxFrameSize)
	}

	buf := make([]byte, framePrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[framePrefixSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame:\n%w", err)
	}

	return nil
}

// readFrame reads one frame written by writeFrame.
func readFrame(r io.Reader) ([]byte, error) {
	var prefix [framePrefixSize]byte

	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("read frame length:\n%w", err)
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame too large: %d > %d", size, maxFrameSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload:\n%w", err)
	}

	return payload, nil
}
