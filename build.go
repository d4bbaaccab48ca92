package beheader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Build generates the polyglot file described by job.
//
// The pipeline transcodes job.Image to PNG and job.Media to an MP4
// container, replaces the container's lead box with the synthesized
// header, hides the PNG (and wrapped hypertext, if any) in a box the
// media view skips, then appends the document tail, the appendables and
// the merged archive. The result lands at job.Output only when every
// fatal step succeeded; the byte at offset 3 is forced to zero last so
// the icon and media views line up.
//
// Non-fatal problems (missing appendables, a document whose xref cannot
// be relocated, a remainder the chunk offset patch does not understand)
// are logged through the configured logger and the build continues.
func Build(ctx context.Context, job Job, opts ...Option) error {
	cfg := newBuildConfig(opts)
	if err := validateJob(job); err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "beheader-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	pngBytes, err := convertImage(job.Image, cfg.limits)
	if err != nil {
		return err
	}

	hasVideo, err := probeMedia(ctx, cfg.ffprobePath, job.Media)
	if err != nil {
		return err
	}
	mediaPath := filepath.Join(scratch, "media.mp4")
	if err := transcodeAV(ctx, cfg.ffmpegPath, job.Media, mediaPath, hasVideo); err != nil {
		return err
	}
	container, err := os.ReadFile(mediaPath)
	if err != nil {
		return err
	}

	var hypertext []byte
	if job.HTML != "" {
		raw, err := os.ReadFile(job.HTML)
		if err != nil {
			return err
		}
		hypertext = wrapHypertext(raw)
	}

	skipBox, err := buildSkipBox(hypertext, pngBytes)
	if err != nil {
		return err
	}

	remainder, err := stripLeadingBox(container)
	if err != nil {
		return err
	}
	if cfg.patchChunkOffsets {
		delta := int64(headerSize+len(skipBox)) - int64(len(container)-len(remainder))
		patched, perr := patchChunkOffsets(remainder, delta)
		if perr != nil {
			cfg.logger.Warn("chunk offsets left unpatched", "err", perr)
		} else {
			remainder = patched
		}
	}

	var document []byte
	if job.Document != "" {
		document, err = os.ReadFile(job.Document)
		if err != nil {
			return err
		}
		if uint64(len(document)) > cfg.limits.MaxDocumentBytes {
			return fmt.Errorf("%w: document %d bytes", ErrLimitExceeded, len(document))
		}
	}

	totalSize := headerSize + len(skipBox) + len(remainder)
	var docPrefix []byte
	if len(document) > 0 {
		docPrefix = document[:min(documentMagicLen, len(document))]
	}
	header, err := synthesizeHeader(headerParams{
		imageSize:    len(pngBytes),
		hypertextLen: len(hypertext),
		extra:        job.Extra,
		docPrefix:    docPrefix,
		totalSize:    totalSize,
	})
	if err != nil {
		return err
	}

	return writeOutput(job, cfg, scratch, header, skipBox, remainder, document)
}

// writeOutput streams every region into a temp file beside the output path
// and renames it into place, so a failed build never leaves a partial
// file.
func writeOutput(job Job, cfg buildConfig, scratch string, header, skipBox, remainder, document []byte) (err error) {
	dir := filepath.Dir(job.Output)
	tmp, err := os.CreateTemp(dir, ".beheader-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	cw := &countingWriter{w: tmp}
	for _, region := range [][]byte{header, skipBox, remainder} {
		if _, err = cw.Write(region); err != nil {
			return err
		}
	}

	if len(document) > 0 {
		tail := buildDocumentTail(document)
		if perr := shiftXRef(tail, int(cw.n)+len(objectTerminator)); perr != nil {
			cfg.logger.Warn("document tail left unpatched", "err", perr)
		}
		if _, err = cw.Write(tail); err != nil {
			return err
		}
	}

	for _, p := range job.Appendables {
		info, statErr := os.Stat(p)
		if statErr != nil || info.IsDir() {
			cfg.logger.Warn("skipping appendable", "path", p)
			continue
		}
		if err = appendFile(cw, p); err != nil {
			return err
		}
	}

	if len(job.Archives) > 0 {
		if err = mergeArchives(cw, cw.n, job.Archives, scratch, cfg.limits); err != nil {
			return err
		}
	}

	// Shrinks the lead box to 256 and fixes the icon type field.
	if _, err = tmp.WriteAt([]byte{0}, 3); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), job.Output)
}

func appendFile(w io.Writer, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
