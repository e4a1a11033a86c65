package main

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Supported --framing modes for inputs holding several payloads.
const (
	framingNone      = "none"
	framingDelimited = "delimited" // varint length prefix, as written by protodelim
	framingLE32      = "le32"      // 4-byte little-endian length prefix
)

var framings = []string{framingNone, framingDelimited, framingLE32}

// splitFrames cuts data into the payloads it carries.
func splitFrames(framing string, data []byte) ([][]byte, error) {
	switch framing {
	case framingNone, "":
		return [][]byte{data}, nil

	case framingDelimited:
		var frames [][]byte
		for off := 0; off < len(data); {
			frame, n := protowire.ConsumeBytes(data[off:])
			if n < 0 {
				return nil, fmt.Errorf("frame %d at offset %d: %w", len(frames), off, protowire.ParseError(n))
			}
			frames = append(frames, frame)
			off += n
		}
		return frames, nil

	case framingLE32:
		var frames [][]byte
		for off := 0; off < len(data); {
			if len(data)-off < 4 {
				return nil, fmt.Errorf("frame %d at offset %d: truncated length", len(frames), off)
			}
			size := int(binary.LittleEndian.Uint32(data[off:]))
			off += 4
			if size > len(data)-off {
				return nil, fmt.Errorf("frame %d at offset %d: length %d exceeds input", len(frames), off-4, size)
			}
			frames = append(frames, data[off:off+size])
			off += size
		}
		return frames, nil

	default:
		return nil, fmt.Errorf("unknown framing %q (want one of %v)", framing, framings)
	}
}

// appendFrame writes payload into dst with the given framing.
func appendFrame(framing string, dst, payload []byte) ([]byte, error) {
	switch framing {
	case framingNone, "":
		return append(dst, payload...), nil
	case framingDelimited:
		return protowire.AppendBytes(dst, payload), nil
	case framingLE32:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
		return append(dst, payload...), nil
	default:
		return nil, fmt.Errorf("unknown framing %q (want one of %v)", framing, framings)
	}
}
