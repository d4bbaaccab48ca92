package beheader

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Containers worth descending into on the way to the chunk offset tables.
var chunkPatchContainers = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"stbl": true,
}

// patchChunkOffsets returns a copy of the media remainder with every
// stco/co64 chunk offset shifted by delta, compensating for the bytes
// prepended before the remainder. Any structural surprise discards the
// copy, so the caller can fall back to the original.
func patchChunkOffsets(rem []byte, delta int64) ([]byte, error) {
	out := make([]byte, len(rem))
	copy(out, rem)
	if err := walkChunkBoxes(out, 0, len(out), delta); err != nil {
		return nil, err
	}
	return out, nil
}

func walkChunkBoxes(buf []byte, lo, hi int, delta int64) error {
	off := lo
	for off < hi {
		if off+boxPreambleSize > hi {
			return fmt.Errorf("box header at %d truncated", off)
		}
		size := int64(binary.BigEndian.Uint32(buf[off : off+4]))
		tag := string(buf[off+4 : off+8])
		header := int64(boxPreambleSize)
		switch size {
		case 0:
			size = int64(hi - off)
		case 1:
			if off+16 > hi {
				return fmt.Errorf("extended header of %q at %d truncated", tag, off)
			}
			size = int64(binary.BigEndian.Uint64(buf[off+8 : off+16]))
			header = 16
		}
		if size < header || int64(off)+size > int64(hi) {
			return fmt.Errorf("box %q at %d declares %d bytes", tag, off, size)
		}
		end := off + int(size)
		switch {
		case chunkPatchContainers[tag]:
			if err := walkChunkBoxes(buf, off+int(header), end, delta); err != nil {
				return err
			}
		case tag == "stco":
			if err := shiftChunkTable(buf[off:end], 4, delta); err != nil {
				return err
			}
		case tag == "co64":
			if err := shiftChunkTable(buf[off:end], 8, delta); err != nil {
				return err
			}
		}
		off = end
	}
	return nil
}

// shiftChunkTable patches one stco or co64 box in place. width is the
// entry size in bytes.
func shiftChunkTable(box []byte, width int, delta int64) error {
	if len(box) < 16 {
		return fmt.Errorf("chunk table of %d bytes", len(box))
	}
	count := int(binary.BigEndian.Uint32(box[12:16]))
	if 16+count*width != len(box) {
		return fmt.Errorf("chunk table declares %d entries in %d bytes", count, len(box))
	}
	for i := 0; i < count; i++ {
		p := 16 + i*width
		if width == 4 {
			v := int64(binary.BigEndian.Uint32(box[p:p+4])) + delta
			if v < 0 || v > math.MaxUint32 {
				return fmt.Errorf("chunk offset %d out of range", v)
			}
			binary.BigEndian.PutUint32(box[p:p+4], uint32(v))
		} else {
			v := int64(binary.BigEndian.Uint64(box[p:p+8])) + delta
			if v < 0 {
				return fmt.Errorf("chunk offset %d out of range", v)
			}
			binary.BigEndian.PutUint64(box[p:p+8], uint64(v))
		}
	}
	return nil
}
