package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFramePartSize bounds any single part to guard against a corrupt or
// hostile peer claiming an unbounded length prefix and exhausting memory.
const MaxFramePartSize = 64 << 20 // 64MiB

// WriteFrame serializes a Frame onto w as: uint32 part count, then per part
// a uint32 byte length followed by the part's bytes.
func WriteFrame(w io.Writer, frame Frame) (err error) {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(frame)))
	if _, err = w.Write(header); err != nil {
		err = fmt.Errorf("write frame part count: %w", err)
		return
	}

	for i, part := range frame {
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(part)))
		if _, err = w.Write(lenBuf); err != nil {
			err = fmt.Errorf("write frame part %d length: %w", i, err)
			return
		}
		if len(part) == 0 {
			continue
		}
		if _, err = w.Write(part); err != nil {
			err = fmt.Errorf("write frame part %d body: %w", i, err)
			return
		}
	}
	return
}

// ReadFrame reads one Frame previously written by WriteFrame.
func ReadFrame(r io.Reader) (frame Frame, err error) {
	header := make([]byte, 4)
	if _, err = io.ReadFull(r, header); err != nil {
		return
	}
	partCount := binary.BigEndian.Uint32(header)

	frame = make(Frame, partCount)
	for i := uint32(0); i < partCount; i++ {
		lenBuf := make([]byte, 4)
		if _, err = io.ReadFull(r, lenBuf); err != nil {
			err = fmt.Errorf("read frame part %d length: %w", i, err)
			return
		}
		partLen := binary.BigEndian.Uint32(lenBuf)
		if partLen > MaxFramePartSize {
			err = fmt.Errorf("frame part %d claims %d bytes, exceeds maximum %d", i, partLen, MaxFramePartSize)
			return
		}

		part := make([]byte, partLen)
		if partLen > 0 {
			if _, err = io.ReadFull(r, part); err != nil {
				err = fmt.Errorf("read frame part %d body: %w", i, err)
				return
			}
		}
		frame[i] = part
	}
	return
}
