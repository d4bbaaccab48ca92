package beheader

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// headerRegion is the fixed region that opens every output file. The same
// bytes parse two ways: as an icon directory with one entry, and as the
// lead box of the media container. Field setters write one region each;
// splice writes move a cursor through the free region between the icon
// entry and the brand text.
type headerRegion struct {
	buf    [headerSize]byte
	cursor int
}

func newHeaderRegion() *headerRegion {
	h := &headerRegion{cursor: spliceStart}
	h.setLeadBoxSize()
	h.setEntryCount()
	h.setBitDepth()
	h.setBrands()
	return h
}

// setLeadBoxSize writes bytes 2 and 3. Read big-endian with the zero bytes
// before them they declare a 288-byte lead box; the final zeroing of byte 3
// drops that to 256 and simultaneously turns bytes 2:4 into the icon type
// field, little-endian 1.
func (h *headerRegion) setLeadBoxSize() {
	h.buf[2] = 1
	h.buf[3] = headerBoxSize
}

// setEntryCount writes the fragmented, brand-first marker at bytes 4:8,
// which doubles as the icon directory entry count of 1.
func (h *headerRegion) setEntryCount() {
	h.buf[4] = 1
	h.buf[5] = 0
	h.buf[6] = 0
	h.buf[7] = 0
}

// setBitDepth writes the icon entry bit depth. The byte also lands in the
// size field of the box the media view sees starting at offset 8.
func (h *headerRegion) setBitDepth() {
	h.buf[12] = headerBoxSize
}

func (h *headerRegion) setBrands() {
	copy(h.buf[240:256], brandText)
	copy(h.buf[256:288], canonicalFtyp[:])
}

// setIconEntry records where the PNG payload lives in the final file and
// how long it is.
func (h *headerRegion) setIconEntry(size, offset int) error {
	if size < 0 || int64(size) > math.MaxUint32 {
		return fmt.Errorf("%w: image size %d", ErrPayloadTooLarge, size)
	}
	if offset < 0 || int64(offset) > math.MaxUint32 {
		return fmt.Errorf("%w: image offset %d", ErrPayloadTooLarge, offset)
	}
	binary.LittleEndian.PutUint32(h.buf[14:18], uint32(size))
	binary.LittleEndian.PutUint32(h.buf[18:22], uint32(offset))
	return nil
}

// splice writes p at the cursor and advances it.
func (h *headerRegion) splice(p []byte) error {
	if err := h.spliceAt(h.cursor, p); err != nil {
		return err
	}
	h.cursor += len(p)
	return nil
}

// spliceAt writes p at a fixed offset without moving the cursor. Writes
// must stay below the brand text.
func (h *headerRegion) spliceAt(off int, p []byte) error {
	if off+len(p) > spliceEnd {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrLayoutOverflow, len(p), off)
	}
	copy(h.buf[off:], p)
	return nil
}

// spliceDocumentOpen writes a newline and the document signature. The
// cursor always advances by the full reserved width so the object header
// position does not depend on the signature length.
func (h *headerRegion) spliceDocumentOpen(prefix []byte) error {
	if len(prefix) > documentMagicLen {
		prefix = prefix[:documentMagicLen]
	}
	if h.cursor+1+documentMagicLen > spliceEnd {
		return fmt.Errorf("%w: document signature at offset %d", ErrLayoutOverflow, h.cursor)
	}
	h.buf[h.cursor] = '\n'
	copy(h.buf[h.cursor+1:], prefix)
	h.cursor += 1 + documentMagicLen
	return nil
}

func (h *headerRegion) bytes() []byte {
	out := make([]byte, headerSize)
	copy(out, h.buf[:])
	return out
}

type headerParams struct {
	imageSize    int
	hypertextLen int    // wrapped hypertext bytes inside the wrapper box
	extra        []byte // spliced verbatim at the cursor start
	docPrefix    []byte // leading document bytes, empty when no document
	totalSize    int    // header + wrapper box + media remainder
}

// synthesizeHeader builds the 288-byte region. The icon payload offset is
// fixed by layout: the header, then the box preamble of the wrapper, then
// the hypertext bytes, then the PNG. When a document is attached, the
// object header is placed past the cursor by the extra length again, and
// its declared stream length is found by fixed point so that the stream
// ends exactly where the terminator will be appended.
func synthesizeHeader(p headerParams) ([]byte, error) {
	h := newHeaderRegion()
	if err := h.setIconEntry(p.imageSize, headerSize+boxPreambleSize+p.hypertextLen); err != nil {
		return nil, err
	}
	if err := h.splice(p.extra); err != nil {
		return nil, err
	}
	if err := h.splice(commentOpen); err != nil {
		return nil, err
	}
	if len(p.docPrefix) > 0 {
		if err := h.spliceDocumentOpen(p.docPrefix); err != nil {
			return nil, err
		}
		obj, err := streamObjectHeader(p.totalSize, h.cursor, len(p.extra))
		if err != nil {
			return nil, err
		}
		if err := h.spliceAt(h.cursor+len(p.extra), obj); err != nil {
			return nil, err
		}
	}
	return h.bytes(), nil
}

// streamObjectHeader renders the document object header whose declared
// length makes the stream swallow everything up to the terminator. The
// rendered width feeds back into the length, so the width is searched
// downward until it matches its own rendering.
func streamObjectHeader(totalSize, cursor, extraLen int) ([]byte, error) {
	offset := 30 + len(strconv.Itoa(totalSize))
	for i := 0; i < fixedPointRounds; i++ {
		offset--
		s := fmt.Sprintf("\n1 0 obj\n<</Length %d>>\nstream\n", totalSize-cursor-extraLen-offset)
		if len(s) == offset {
			return []byte(s), nil
		}
	}
	return nil, fmt.Errorf("%w: total size %d, cursor %d", ErrNoFixedPoint, totalSize, cursor)
}
