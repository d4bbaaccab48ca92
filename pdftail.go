package beheader

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// buildDocumentTail prepends the terminator that closes the stream object
// opened in the header region. The document rides after it unmodified;
// shiftXRef relocates its cross-reference table separately so a failed
// patch can fall back to this exact byte sequence.
func buildDocumentTail(doc []byte) []byte {
	tail := make([]byte, 0, len(objectTerminator)+len(doc))
	tail = append(tail, objectTerminator...)
	tail = append(tail, doc...)
	return tail
}

// shiftXRef rewrites the cross-reference table and startxref pointer in
// buf, adding delta to every offset. buf holds terminator plus document;
// delta is the byte count now sitting before the document's first byte.
//
// All writes are in place and clamped, so len(buf) never changes. The scan
// only understands the single subsection layout most writers emit; anything
// else fails before the first write, and the caller keeps the unpatched
// tail.
func shiftXRef(buf []byte, delta int) error {
	i := bytes.Index(buf, xrefAnchor)
	if i < 0 {
		return fmt.Errorf("%w: xref table", ErrXRefNotFound)
	}
	xrefStart := i + 1

	j := bytes.Index(buf[xrefStart:], freeEntryAnchor)
	if j < 0 {
		return fmt.Errorf("%w: first entry", ErrXRefNotFound)
	}
	entryStart := xrefStart + j + 1

	k := bytes.Index(buf[xrefStart:], startxrefAnchor)
	if k < 0 {
		return fmt.Errorf("%w: startxref", ErrXRefNotFound)
	}
	startxrefStart := xrefStart + k + 1

	if startxrefStart+11 > len(buf) {
		return fmt.Errorf("%w: startxref value", ErrXRefNotFound)
	}
	m := bytes.IndexByte(buf[startxrefStart+11:], '\n')
	if m < 0 {
		return fmt.Errorf("%w: startxref terminator", ErrXRefNotFound)
	}
	startxrefEnd := startxrefStart + 11 + m

	count, err := parseEntryCount(buf[xrefStart:entryStart])
	if err != nil {
		return err
	}

	// First pass parses and bounds every entry so no write happens on a
	// table the scan cannot fully patch.
	offsets := make([]int, count)
	positions := make([]int, count)
	cur := entryStart
	for n := 0; n < count; n++ {
		if cur+10 > len(buf) {
			return fmt.Errorf("%w: entry %d out of range", ErrXRefNotFound, n)
		}
		v, err := strconv.Atoi(strings.TrimSpace(string(buf[cur : cur+10])))
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrXRefNotFound, n, err)
		}
		shifted := v + delta
		if len(strconv.Itoa(shifted)) > 10 {
			return fmt.Errorf("%w: entry %d offset %d", ErrOffsetOverflow, n, shifted)
		}
		offsets[n] = shifted
		positions[n] = cur
		nl := bytes.IndexByte(buf[cur+1:], '\n')
		if nl < 0 {
			return fmt.Errorf("%w: entry %d unterminated", ErrXRefNotFound, n)
		}
		cur += 1 + nl + 1
	}

	oldStart, err := strconv.Atoi(strings.TrimSpace(string(buf[startxrefStart+10 : startxrefEnd])))
	if err != nil {
		return fmt.Errorf("%w: startxref value: %v", ErrXRefNotFound, err)
	}
	newStart := strconv.Itoa(oldStart + delta)
	pos := startxrefStart + 10
	if pos+len(newStart) > len(buf) {
		return fmt.Errorf("%w: startxref %s", ErrOffsetOverflow, newStart)
	}

	for n := 0; n < count; n++ {
		copy(buf[positions[n]:], fmt.Sprintf("%010d", offsets[n]))
	}
	copy(buf[pos:], newStart)
	copy(buf[pos+len(newStart):], eofMarker)
	tailStart := pos + len(newStart) + len(eofMarker)
	if tailStart < len(buf) {
		clear(buf[tailStart:])
	}
	return nil
}

// parseEntryCount pulls the entry total out of the subsection header, the
// last field of e.g. "xref\n0 5\n". The free entry it precedes is counted
// and patched like every other entry.
func parseEntryCount(header []byte) (int, error) {
	fields := strings.Fields(string(header))
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty subsection header", ErrXRefNotFound)
	}
	count, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || count < 0 {
		return 0, fmt.Errorf("%w: entry count %q", ErrXRefNotFound, fields[len(fields)-1])
	}
	return count, nil
}
