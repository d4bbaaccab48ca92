package beheader

const (
	// headerSize is the byte length of the fixed region that opens every
	// output file: icon directory, splice region, brand text, and the
	// canonical box at 256.
	headerSize = 288

	// headerBoxSize is byte 3 of the lead box size field. Together with
	// byte 2 it declares a 288-byte lead box until the final zeroing of
	// byte 3 shrinks it to 256, exposing the canonical box.
	headerBoxSize = 32

	// boxPreambleSize is the length of a box size field plus its tag.
	boxPreambleSize = 8

	// spliceStart and spliceEnd bound the free region of the header.
	// Bytes below 22 are icon directory fields, bytes from 240 up are the
	// brand text and the canonical box.
	spliceStart = 22
	spliceEnd   = 240

	// documentMagicLen is how many leading document bytes are mirrored
	// into the header so document readers find their signature early.
	documentMagicLen = 9

	// fixedPointRounds bounds the stream length search. The search
	// converges within a couple of iterations for any representable
	// size; hitting the bound means the arithmetic is broken.
	fixedPointRounds = 30
)

var (
	// canonicalFtyp is the box exposed at offset 256 once the lead box
	// shrinks: isom major brand, minor version 0x200, then
	// isom/iso2/avc1/mp41 compatible brands.
	canonicalFtyp = [32]byte{
		0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p',
		'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
		'i', 's', 'o', 'm', 'i', 's', 'o', '2',
		'a', 'v', 'c', '1', 'm', 'p', '4', '1',
	}

	// brandText duplicates the compatible brands inside the lead box so
	// strict players accept the file before they reach offset 256.
	brandText = []byte("isomiso2avc1mp41")

	// boxTagSkip wraps the icon and hypertext payloads in a box media
	// parsers ignore.
	boxTagSkip = []byte("skip")

	// commentOpen is always spliced into the header free region. When a
	// hypertext payload is attached its wrapper closes and reopens the
	// comment around the visible markup.
	commentOpen = []byte("<!--")

	hypertextWrapPrefix = []byte("--><style>body{font-size:0}</style><div style=font-size:initial>")
	hypertextWrapSuffix = []byte("</div><!--")

	// objectTerminator closes the document stream object that swallows
	// the binary prefix.
	objectTerminator = []byte("\nendstream\nendobj\n")

	// eofMarker terminates the relocated document.
	eofMarker = []byte("\n%%EOF\n")

	xrefAnchor      = []byte("\nxref")
	freeEntryAnchor = []byte("\n0000000000")
	startxrefAnchor = []byte("\nstartxref")
)

// Job describes one polyglot build. Output, Image and Media are required;
// everything else is optional.
type Job struct {
	// Output is the path the finished polyglot is renamed to. The file
	// appears there only after the whole build succeeds.
	Output string

	// Image is transcoded to PNG and becomes the single icon directory
	// entry.
	Image string

	// Media is probed for a video stream and transcoded to an MP4
	// container whose lead box is replaced by the synthesized header.
	Media string

	// HTML is an optional hypertext payload hidden inside the wrapper
	// box.
	HTML string

	// Document is an optional PDF appended after the media payload with
	// its cross-reference table shifted to the new positions.
	Document string

	// Archives are merged into one zip written at the very end of the
	// file, with entry offsets valid for their final position.
	Archives []string

	// Extra is spliced verbatim into the free region of the header.
	Extra []byte

	// Appendables are appended verbatim, in order, before the merged
	// archive. Missing paths are skipped with a warning.
	Appendables []string
}
