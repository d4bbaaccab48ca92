package beheader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestBuildSkipBox(t *testing.T) {
	box, err := buildSkipBox([]byte("AB"), []byte("XYZ"))
	if err != nil {
		t.Fatal(err)
	}
	if len(box) != 13 {
		t.Fatalf("box length %d", len(box))
	}
	if got := binary.BigEndian.Uint32(box[0:4]); int(got) != len(box) {
		t.Fatalf("declared size %d, actual %d", got, len(box))
	}
	if !bytes.Equal(box[4:8], boxTagSkip) {
		t.Fatalf("tag %q", box[4:8])
	}
	if !bytes.Equal(box[8:], []byte("ABXYZ")) {
		t.Fatalf("payload %q", box[8:])
	}
}

func TestBuildSkipBox_NoHypertext(t *testing.T) {
	box, err := buildSkipBox(nil, []byte("PNG"))
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.BigEndian.Uint32(box[0:4]); got != 11 {
		t.Fatalf("declared size %d", got)
	}
	if !bytes.Equal(box[8:], []byte("PNG")) {
		t.Fatalf("payload %q", box[8:])
	}
}

func TestSkipBoxSize_Overflow(t *testing.T) {
	if _, err := skipBoxSize(0, math.MaxUint32-3); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v", err)
	}
	n, err := skipBoxSize(0, math.MaxUint32-8)
	if err != nil {
		t.Fatal(err)
	}
	if n != math.MaxUint32 {
		t.Fatalf("size %d", n)
	}
}

func TestWrapHypertext(t *testing.T) {
	got := wrapHypertext([]byte("<p>hi</p>"))
	want := "--><style>body{font-size:0}</style><div style=font-size:initial><p>hi</p></div><!--"
	if string(got) != want {
		t.Fatalf("wrapped %q", got)
	}
	if got := wrapHypertext(nil); string(got) != string(hypertextWrapPrefix)+string(hypertextWrapSuffix) {
		t.Fatalf("empty wrap %q", got)
	}
}
