package tiff

import (
	"fmt"
	"image"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/rawtiff/pixel"
)

// Image converts m to an image.Image:
//   - 1 uint8 channel: *image.Gray
//   - 1 uint16 channel: *image.Gray16
//   - 3 or 4 uint8 channels: *image.RGBA, 4 channels being premultiplied RGBA
//   - 1 or 3 floating point channels: *hdr.RGB
func Image(m *pixel.Buffer) (image.Image, error) {
	bounds := m.Bounds()
	switch {
	case m.Type == pixel.Uint8 && m.Channels == 1:
		dst := image.NewGray(bounds)
		for y := 0; y < m.Rows; y++ {
			copy(dst.Pix[y*dst.Stride:], m.Row(y))
		}
		return dst, nil
	case m.Type == pixel.Uint16 && m.Channels == 1:
		dst := image.NewGray16(bounds)
		for y := 0; y < m.Rows; y++ {
			row := m.Row(y)
			line := dst.Pix[y*dst.Stride:]
			for i := 0; i < len(row); i += 2 {
				line[i], line[i+1] = row[i+1], row[i] // Gray16 is big-endian.
			}
		}
		return dst, nil
	case m.Type == pixel.Uint8 && m.Channels == 4:
		dst := image.NewRGBA(bounds)
		for y := 0; y < m.Rows; y++ {
			copy(dst.Pix[y*dst.Stride:], m.Row(y))
		}
		return dst, nil
	case m.Type == pixel.Uint8 && m.Channels == 3:
		dst := image.NewRGBA(bounds)
		for y := 0; y < m.Rows; y++ {
			row := m.Row(y)
			line := dst.Pix[y*dst.Stride:]
			for x := 0; x < m.Cols; x++ {
				copy(line[4*x:4*x+3], row[3*x:3*x+3])
				line[4*x+3] = 0xff
			}
		}
		return dst, nil
	case m.Type.Kind() == pixel.KindFloat && (m.Channels == 1 || m.Channels == 3):
		return hdrImage(m), nil
	}
	return nil, UnsupportedError(fmt.Sprintf("image conversion of %d %v channels", m.Channels, m.Type))
}

// hdrImage converts a floating point buffer, a single channel being
// replicated over R, G and B.
func hdrImage(m *pixel.Buffer) hdr.Image {
	dst := hdr.NewRGB(m.Bounds())
	g, b := 0, 0
	if m.Channels == 3 {
		g, b = 1, 2
	}
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			dst.SetRGB(x, y, hdrcolor.RGB{
				R: m.Value(x, y, 0),
				G: m.Value(x, y, g),
				B: m.Value(x, y, b),
			})
		}
	}
	return dst
}
