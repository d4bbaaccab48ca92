package beheader

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Function variables for testing injection.
var (
	zipOpenEntry  = func(zf *zip.File) (io.ReadCloser, error) { return zf.Open() }
	newZstdReader = func(r io.Reader) (*zstd.Decoder, error) { return zstd.NewReader(r) }
)

// mergeArchives unpacks every source archive into the scratch directory and
// writes the union to w as one zip. Later sources win name collisions.
// offset is how far w has already advanced in the final file, so the zip's
// internal offsets stay valid at its appended position.
func mergeArchives(w io.Writer, offset int64, sources []string, scratch string, limits Limits) error {
	root := filepath.Join(scratch, "archive-merge")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveMerge, err)
	}
	m := &archiveMerger{limits: limits}
	for _, src := range sources {
		if err := m.unpack(src, root); err != nil {
			if errors.Is(err, ErrLimitExceeded) {
				return err
			}
			return fmt.Errorf("%w: %s: %v", ErrArchiveMerge, filepath.Base(src), err)
		}
	}
	if err := writeMergedZip(w, offset, root); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveMerge, err)
	}
	return nil
}

type archiveMerger struct {
	limits  Limits
	entries int
	total   uint64
}

// unpack dispatches on the source suffix. Anything unrecognized is treated
// as a zip, which is also the format the merged tail is written back as.
func (m *archiveMerger) unpack(src, dst string) error {
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".tar"):
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		return m.unpackTar(f, dst)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		return m.unpackTar(gz, dst)
	case strings.HasSuffix(lower, ".tar.zst"):
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		dec, err := newZstdReader(f)
		if err != nil {
			return err
		}
		defer dec.Close()
		return m.unpackTar(dec, dst)
	case strings.HasSuffix(lower, ".tar.lz4"):
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		return m.unpackTar(lz4.NewReader(f), dst)
	case strings.HasSuffix(lower, ".tar.br"):
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		return m.unpackTar(brotli.NewReader(f), dst)
	default:
		return m.unpackZip(src, dst)
	}
}

func (m *archiveMerger) unpackZip(src, dst string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, zf := range zr.File {
		if err := validateEntryName(zf.Name); err != nil {
			return fmt.Errorf("entry %q: %v", zf.Name, err)
		}
		target := filepath.Join(dst, filepath.FromSlash(path.Clean(zf.Name)))
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := zipOpenEntry(zf)
		if err != nil {
			return fmt.Errorf("entry %q: %v", zf.Name, err)
		}
		err = m.extract(target, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("entry %q: %w", zf.Name, err)
		}
	}
	return nil
}

func (m *archiveMerger) unpackTar(r io.Reader, dst string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := validateEntryName(hdr.Name); err != nil {
			return fmt.Errorf("entry %q: %v", hdr.Name, err)
		}
		target := filepath.Join(dst, filepath.FromSlash(path.Clean(hdr.Name)))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := m.extract(target, tr); err != nil {
				return fmt.Errorf("entry %q: %w", hdr.Name, err)
			}
		}
		// Links and special files never make it into the merge.
	}
}

// extract writes one entry under the merge root, enforcing the bomb
// guards. Declared sizes are not trusted; the copy itself is limited.
func (m *archiveMerger) extract(target string, r io.Reader) error {
	m.entries++
	if m.entries > m.limits.MaxArchiveEntries {
		return fmt.Errorf("%w: more than %d archive entries", ErrLimitExceeded, m.limits.MaxArchiveEntries)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, io.LimitReader(r, int64(m.limits.MaxArchiveEntryBytes)+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if uint64(n) > m.limits.MaxArchiveEntryBytes {
		return fmt.Errorf("%w: archive entry beyond %d bytes", ErrLimitExceeded, m.limits.MaxArchiveEntryBytes)
	}
	m.total += uint64(n)
	if m.total > m.limits.MaxArchiveTotalBytes {
		return fmt.Errorf("%w: extracted archives beyond %d bytes", ErrLimitExceeded, m.limits.MaxArchiveTotalBytes)
	}
	return nil
}

// writeMergedZip repacks the merge root as a single deflated zip.
func writeMergedZip(w io.Writer, offset int64, root string) error {
	zw := zip.NewWriter(w)
	zw.SetOffset(offset)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			f.Close()
			return err
		}
		_, err = io.Copy(entry, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
