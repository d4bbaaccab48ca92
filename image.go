package beheader

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Function variable for testing injection.
var convertImage = convertImageFile

// convertImageFile decodes src and re-encodes it as PNG over an alpha
// capable pixel format, since the icon entry promises 32 bits per pixel.
func convertImageFile(src string, limits Limits) ([]byte, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(src), err)
	}
	rgba := image.NewNRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode image %s: %w", filepath.Base(src), err)
	}
	if uint64(buf.Len()) > limits.MaxImageBytes {
		return nil, fmt.Errorf("%w: image payload %d bytes", ErrLimitExceeded, buf.Len())
	}
	return buf.Bytes(), nil
}
