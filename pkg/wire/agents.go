package wire

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// EncodeAgents serializes an agent-name set as a length-prefixed binary
// blob: a big-endian uint32 count, followed per entry by a big-endian
// uint32 byte length and the UTF-8 bytes themselves. Names are sorted
// before encoding so two processes given the same input set always produce
// byte-identical output.
func EncodeAgents(agents []string) (blob []byte) {
	sorted := make([]string, len(agents))
	copy(sorted, agents)
	sort.Strings(sorted)

	size := 4
	for _, a := range sorted {
		size += 4 + len(a)
	}

	blob = make([]byte, size)
	binary.BigEndian.PutUint32(blob[0:4], uint32(len(sorted)))

	offset := 4
	for _, a := range sorted {
		binary.BigEndian.PutUint32(blob[offset:offset+4], uint32(len(a)))
		offset += 4
		copy(blob[offset:offset+len(a)], a)
		offset += len(a)
	}
	return
}

// DecodeAgents reverses EncodeAgents, validating every length prefix stays
// within the remaining buffer.
func DecodeAgents(blob []byte) (agents []string, err error) {
	if len(blob) < 4 {
		err = fmt.Errorf("agents blob too short: %d bytes", len(blob))
		return
	}

	count := binary.BigEndian.Uint32(blob[0:4])
	offset := 4

	agents = make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(blob) {
			err = fmt.Errorf("agents blob truncated reading entry %d length", i)
			return
		}
		entryLen := int(binary.BigEndian.Uint32(blob[offset : offset+4]))
		offset += 4

		if entryLen < 0 || offset+entryLen > len(blob) {
			err = fmt.Errorf("agents blob truncated reading entry %d body (len %d)", i, entryLen)
			return
		}
		agents = append(agents, string(blob[offset:offset+entryLen]))
		offset += entryLen
	}
	return
}
