// Package beheader generates polyglot media files: one byte sequence that
// parses as several formats at once.
//
// A generated file is simultaneously an ICO image whose single entry is a
// PNG, and an MP4 whose canonical ftyp box sits at offset 256. Optionally
// it is also a PDF (the binary prefix is swallowed by a stream object,
// the original document rides at the tail with its cross-reference table
// shifted), an HTML page (hidden from the markup view by a comment
// wrapper), and a ZIP holding the union of any source archives.
//
// # File Layout
//
// Every output starts with a fixed 288-byte header:
//   - bytes 0..22: icon directory fields that double as the lead box of
//     the media view
//   - bytes 22..240: free region for extra bytes, the comment marker and
//     the document header
//   - bytes 240..288: compatibility brand text and the canonical ftyp box
//
// A skip box carrying the hypertext and PNG payloads follows, then the
// transcoded media container with its own lead box stripped, then the
// optional tails. The byte at offset 3 is zeroed after writing, which
// shrinks the declared lead box from 288 to 256 and completes the icon
// type field.
//
// # Basic Usage
//
//	job := beheader.Job{
//		Output: "out.ico",
//		Image:  "avatar.png",
//		Media:  "clip.mkv",
//	}
//	err := beheader.Build(context.Background(), job)
//
// Transcoding shells out to ffmpeg and ffprobe, which must be on PATH or
// configured with WithFFmpegPath and WithFFprobePath.
//
// # Security Considerations
//
// Source archives are unpacked before merging. Entry names are validated
// against path traversal and extraction is bounded by [Limits] to keep
// decompression bombs from filling the disk.
//
// The beheader command in cmd/beheader wraps this package for batch use.
package beheader
