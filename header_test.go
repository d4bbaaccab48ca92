package beheader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestSynthesizeHeader_Layout(t *testing.T) {
	buf, err := synthesizeHeader(headerParams{imageSize: 1234, totalSize: 400})
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != headerSize {
		t.Fatalf("header length %d", len(buf))
	}
	if buf[0] != 0 || buf[1] != 0 || buf[2] != 1 || buf[3] != headerBoxSize {
		t.Fatalf("lead box bytes %v", buf[:4])
	}
	if got := binary.BigEndian.Uint32(buf[0:4]); got != headerSize {
		t.Fatalf("declared lead box %d before final zeroing", got)
	}
	if !bytes.Equal(buf[4:8], []byte{1, 0, 0, 0}) {
		t.Fatalf("entry count bytes %v", buf[4:8])
	}
	if buf[12] != 32 || buf[13] != 0 {
		t.Fatalf("bit depth bytes %v", buf[12:14])
	}
	if got := binary.LittleEndian.Uint32(buf[14:18]); got != 1234 {
		t.Fatalf("image size %d", got)
	}
	if got := binary.LittleEndian.Uint32(buf[18:22]); got != headerSize+boxPreambleSize {
		t.Fatalf("image offset %d", got)
	}
	if !bytes.Equal(buf[spliceStart:spliceStart+4], commentOpen) {
		t.Fatalf("comment marker %q", buf[spliceStart:spliceStart+4])
	}
	for i := spliceStart + 4; i < spliceEnd; i++ {
		if buf[i] != 0 {
			t.Fatalf("free region byte %d is %#x", i, buf[i])
		}
	}
	if !bytes.Equal(buf[240:256], brandText) {
		t.Fatalf("brand text %q", buf[240:256])
	}
	if !bytes.Equal(buf[256:288], canonicalFtyp[:]) {
		t.Fatalf("canonical box %x", buf[256:288])
	}
}

func TestSynthesizeHeader_ImageOffsetTracksHypertext(t *testing.T) {
	buf, err := synthesizeHeader(headerParams{imageSize: 9, hypertextLen: 75, totalSize: 500})
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(buf[18:22]); got != headerSize+boxPreambleSize+75 {
		t.Fatalf("image offset %d", got)
	}
}

func TestSynthesizeHeader_ExtraSplice(t *testing.T) {
	buf, err := synthesizeHeader(headerParams{imageSize: 1, extra: []byte("abc"), totalSize: 400})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[22:25], []byte("abc")) {
		t.Fatalf("extra bytes %q", buf[22:25])
	}
	if !bytes.Equal(buf[25:29], commentOpen) {
		t.Fatalf("comment marker %q", buf[25:29])
	}
}

// parseObjectHeader reads the rendered object header at start and returns
// its length and the declared stream length.
func parseObjectHeader(t *testing.T, buf []byte, start int) (objLen, streamLen int) {
	t.Helper()
	const open = "\n1 0 obj\n<</Length "
	if string(buf[start:start+len(open)]) != open {
		t.Fatalf("object header at %d reads %q", start, buf[start:start+len(open)])
	}
	rest := buf[start+len(open):]
	end := bytes.Index(rest, []byte(">>\nstream\n"))
	if end < 0 {
		t.Fatalf("object header at %d not terminated", start)
	}
	n, err := strconv.Atoi(string(rest[:end]))
	if err != nil {
		t.Fatalf("stream length %q: %v", rest[:end], err)
	}
	return len(open) + end + len(">>\nstream\n"), n
}

func TestSynthesizeHeader_DocumentObject(t *testing.T) {
	buf, err := synthesizeHeader(headerParams{
		imageSize: 10,
		docPrefix: []byte("%PDF-1.4\n"),
		totalSize: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if buf[26] != '\n' {
		t.Fatalf("document splice starts with %#x", buf[26])
	}
	if !bytes.Equal(buf[27:36], []byte("%PDF-1.4\n")) {
		t.Fatalf("document signature %q", buf[27:36])
	}
	objLen, streamLen := parseObjectHeader(t, buf, 36)
	if objLen != 32 || streamLen != 932 {
		t.Fatalf("object header len %d stream len %d", objLen, streamLen)
	}
	if 36+objLen+streamLen != 1000 {
		t.Fatalf("stream ends at %d, want 1000", 36+objLen+streamLen)
	}
}

func TestSynthesizeHeader_StreamEndsAtTotalSize(t *testing.T) {
	sizes := []int{320, 999, 1000, 99_999, 100_000, 999_999, 1_000_000, 123_456_789, 1 << 31}
	extras := [][]byte{nil, []byte("ab"), []byte(strings.Repeat("x", 30))}
	for _, total := range sizes {
		for _, extra := range extras {
			buf, err := synthesizeHeader(headerParams{
				imageSize: 100,
				extra:     extra,
				docPrefix: []byte("%PDF-1.7\n"),
				totalSize: total,
			})
			if err != nil {
				t.Fatalf("total %d extra %d: %v", total, len(extra), err)
			}
			objStart := 36 + 2*len(extra)
			objLen, streamLen := parseObjectHeader(t, buf, objStart)
			if objStart+objLen+streamLen != total {
				t.Fatalf("total %d extra %d: stream ends at %d",
					total, len(extra), objStart+objLen+streamLen)
			}
		}
	}
}

func TestStreamObjectHeader_Exact(t *testing.T) {
	obj, err := streamObjectHeader(1000, 36, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := "\n1 0 obj\n<</Length 932>>\nstream\n"
	if string(obj) != want {
		t.Fatalf("object header %q, want %q", obj, want)
	}
}

func TestStreamObjectHeader_NoFixedPoint(t *testing.T) {
	// At total size 1068 the length digits straddle the reserved width:
	// 999 renders 32 bytes where 33 are reserved, 1000 renders 33 where
	// 32 are, so no width matches its own rendering.
	_, err := streamObjectHeader(1068, 36, 0)
	if !errors.Is(err, ErrNoFixedPoint) {
		t.Fatalf("err = %v, want ErrNoFixedPoint", err)
	}

	for _, tc := range []struct {
		total int
		want  string
	}{
		{1067, "\n1 0 obj\n<</Length 999>>\nstream\n"},
		{1069, "\n1 0 obj\n<</Length 1000>>\nstream\n"},
	} {
		obj, err := streamObjectHeader(tc.total, 36, 0)
		if err != nil {
			t.Fatalf("total %d: %v", tc.total, err)
		}
		if string(obj) != tc.want {
			t.Fatalf("total %d: object header %q, want %q", tc.total, obj, tc.want)
		}
	}

	_, err = synthesizeHeader(headerParams{
		imageSize: 100,
		docPrefix: []byte("%PDF-1.7\n"),
		totalSize: 1068,
	})
	if !errors.Is(err, ErrNoFixedPoint) {
		t.Fatalf("synthesize err = %v, want ErrNoFixedPoint", err)
	}
}

func TestSynthesizeHeader_LayoutOverflow(t *testing.T) {
	// 215 extra bytes push the comment marker past the brand text.
	_, err := synthesizeHeader(headerParams{
		imageSize: 1,
		extra:     bytes.Repeat([]byte("x"), 215),
		totalSize: 500,
	})
	if !errors.Is(err, ErrLayoutOverflow) {
		t.Fatalf("err = %v", err)
	}

	// 214 fit exactly, the marker ending at the boundary.
	buf, err := synthesizeHeader(headerParams{
		imageSize: 1,
		extra:     bytes.Repeat([]byte("x"), 214),
		totalSize: 500,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[236:240], commentOpen) {
		t.Fatalf("comment marker %q", buf[236:240])
	}

	// With a document the object header lands past the cursor by the
	// extra length again, so it overflows much earlier.
	_, err = synthesizeHeader(headerParams{
		imageSize: 1,
		extra:     bytes.Repeat([]byte("x"), 90),
		docPrefix: []byte("%PDF-1.4\n"),
		totalSize: 1 << 20,
	})
	if !errors.Is(err, ErrLayoutOverflow) {
		t.Fatalf("err = %v", err)
	}
}

func TestSynthesizeHeader_ImageSizeOverflow(t *testing.T) {
	_, err := synthesizeHeader(headerParams{imageSize: math.MaxUint32 + 1, totalSize: 500})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v", err)
	}
}
