package tiff

import (
	"image"
	"io"

	"github.com/mdouchement/rawtiff/pixel"
)

// decoder gives access to the decoded strips or tiles of the first image of a file.
type decoder struct {
	*Directory
	r        io.ReaderAt
	size     int64
	geometry Geometry
	blocks   blocks
}

func newDecoder(r io.ReaderAt, size int64) (*decoder, error) {
	dir, err := readDirectory(r, size)
	if err != nil {
		return nil, err
	}

	d := &decoder{
		Directory: dir,
		r:         r,
		size:      size,
	}
	if d.geometry, err = resolveGeometry(dir); err != nil {
		return nil, err
	}
	if err = checkFootprint(d.geometry, size); err != nil {
		return nil, err
	}
	if d.blocks, err = resolveBlocks(dir, d.geometry, size); err != nil {
		return nil, err
	}
	return d, nil
}

// readBlock returns the decoded content of the block at index, a strip or a
// tile of the given number of rows, as little-endian samples.
// The result always holds exactly the expected number of bytes: short blocks
// are zero padded.
func (d *decoder) readBlock(index, rows int) ([]byte, error) {
	g := d.geometry
	bw, _ := g.blockSize()
	spp := g.blockSamples()
	size := g.Type.Size()

	buf, err := decompress(d.r, g.Compression, int64(d.blocks.offsets[index]), int64(d.blocks.counts[index]))
	if err != nil {
		return nil, err
	}

	expected := bw * rows * spp * size
	if len(buf) < expected {
		padded := make([]byte, expected)
		copy(padded, buf)
		buf = padded
	}
	buf = buf[:expected]

	toLittleEndian(buf, d.ByteOrder, size)

	// Apply horizontal predictor if necessary.
	// In this case, p contains the color difference to the preceding pixel.
	// See page 64-65 of the spec.
	if g.Predictor == prHorizontal {
		undoHorizontalPredictor(buf, bw, spp, size)
	}
	return buf, nil
}

// codec decodes a window of the image. The window has already been
// checked against the image bounds.
type codec interface {
	read(window image.Rectangle) (*pixel.Buffer, error)
	elementType() pixel.Type
}

// newCodec picks the codec matching the organization of the image.
func newCodec(d *decoder) codec {
	if d.geometry.Organization == Tiled {
		return &tileCodec{d: d}
	}
	return &scanlineCodec{d: d}
}
