package tiff

import (
	"image"

	"github.com/mdouchement/rawtiff/pixel"
)

//------------------------//
// Scanline reader        //
//------------------------//

// scanlineCodec decodes strip organized images.
type scanlineCodec struct {
	d *decoder
}

func (c *scanlineCodec) elementType() pixel.Type {
	if c.d.geometry.SamplesPerPixel > 1 {
		return pixel.Uint8
	}
	return c.d.geometry.Type
}

// read decodes the whole image then crops it to the window.
func (c *scanlineCodec) read(window image.Rectangle) (m *pixel.Buffer, err error) {
	g := c.d.geometry
	if g.SamplesPerPixel > 1 {
		m, err = readRGBA(c.d.r, c.d.size)
	} else {
		m, err = c.readAll()
	}
	if err != nil {
		return nil, err
	}

	if window == m.Bounds() {
		return m, nil
	}
	return m.Crop(window)
}

// readAll decodes a single sample image row after row.
func (c *scanlineCodec) readAll() (*pixel.Buffer, error) {
	g := c.d.geometry
	m, err := pixel.New(g.Type, 1, g.Height, g.Width)
	if err != nil {
		return nil, err
	}

	rr := newRowReader(c.d)
	row := make([]byte, m.Stride())
	for y := 0; y < g.Height; y++ {
		if err = rr.readRow(y, row); err != nil {
			return nil, err
		}
		copy(m.Row(y), row)
	}
	return m, nil
}

// rowReader reads the rows of a single plane image in increasing order.
// It holds the decoded strip containing the last row read.
type rowReader struct {
	d     *decoder
	next  int // Lowest row that can still be read.
	strip int
	buf   []byte
}

func newRowReader(d *decoder) *rowReader {
	return &rowReader{d: d, strip: -1}
}

// readRow decodes the row y into dst.
func (rr *rowReader) readRow(y int, dst []byte) error {
	g := rr.d.geometry
	if y < rr.next || y >= g.Height {
		return InternalError("scanline read out of order")
	}
	rr.next = y + 1

	if strip := y / g.RowsPerStrip; strip != rr.strip {
		rows := minInt(g.RowsPerStrip, g.Height-strip*g.RowsPerStrip)
		buf, err := rr.d.readBlock(strip, rows)
		if err != nil {
			return err
		}
		rr.strip = strip
		rr.buf = buf
	}

	stride := g.Width * g.blockSamples() * g.Type.Size()
	i := (y - rr.strip*g.RowsPerStrip) * stride
	copy(dst, rr.buf[i:i+stride])
	return nil
}
