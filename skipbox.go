package beheader

import (
	"encoding/binary"
	"fmt"
	"math"
)

// skipBoxSize returns the declared box size for the given payload lengths.
func skipBoxSize(hypertextLen, imageLen int) (uint32, error) {
	n := uint64(hypertextLen) + uint64(imageLen) + boxPreambleSize
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: wrapper box of %d bytes", ErrPayloadTooLarge, n)
	}
	return uint32(n), nil
}

// buildSkipBox wraps the hypertext and image payloads in a box the media
// view ignores. The hypertext comes first so the icon payload offset in
// the header stays a pure function of the hypertext length.
func buildSkipBox(hypertext, image []byte) ([]byte, error) {
	n, err := skipBoxSize(len(hypertext), len(image))
	if err != nil {
		return nil, err
	}
	box := make([]byte, 0, n)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], n)
	box = append(box, size[:]...)
	box = append(box, boxTagSkip...)
	box = append(box, hypertext...)
	box = append(box, image...)
	return box, nil
}

// wrapHypertext hides the page from the markup view. The leading arrow
// closes the comment opened in the header region and the trailing marker
// reopens it over the binary that follows.
func wrapHypertext(content []byte) []byte {
	out := make([]byte, 0, len(hypertextWrapPrefix)+len(content)+len(hypertextWrapSuffix))
	out = append(out, hypertextWrapPrefix...)
	out = append(out, content...)
	out = append(out, hypertextWrapSuffix...)
	return out
}
