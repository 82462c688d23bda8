package tiff

import (
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/mdouchement/rawtiff/pixel"
	xtiff "golang.org/x/image/tiff"
)

// readRGBA decodes a multi-sample scanline image through the generic RGBA
// expansion of golang.org/x/image/tiff.
func readRGBA(r io.ReaderAt, size int64) (*pixel.Buffer, error) {
	m, err := xtiff.Decode(io.NewSectionReader(r, 0, size))
	if err != nil {
		switch e := err.(type) {
		case xtiff.FormatError:
			return nil, FormatError(fmt.Sprintf("RGBA expansion: %s", string(e)))
		case xtiff.UnsupportedError:
			return nil, UnsupportedError(fmt.Sprintf("RGBA expansion: %s", string(e)))
		}
		return nil, nativeError("read", err)
	}
	return expandRGBA(m)
}

// expandRGBA stores every pixel of m as 4 interleaved uint8 channels in
// R, G, B, A order. Color channels are alpha-premultiplied, the color.RGBA
// contract, and the first pixel of the buffer is m.Bounds().Min.
func expandRGBA(m image.Image) (*pixel.Buffer, error) {
	b := m.Bounds()
	rgba, ok := m.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), m, b.Min, draw.Src)
	}

	dst, err := pixel.New(pixel.Uint8, 4, b.Dy(), b.Dx())
	if err != nil {
		return nil, err
	}
	for y := 0; y < dst.Rows; y++ {
		i := y * rgba.Stride
		copy(dst.Row(y), rgba.Pix[i:i+dst.Stride()])
	}
	return dst, nil
}
