package tiff

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/mdouchement/rawtiff/pixel"
)

// Geometry is the layout of the first image of a file, derived from its directory.
type Geometry struct {
	Width           int
	Height          int
	SamplesPerPixel int
	BitsPerSample   int
	SampleFormat    SampleFormat
	Type            pixel.Type // Scalar type of one sample.
	Organization    Organization

	// Tiled organization only.
	TileWidth  int
	TileHeight int

	// Scanline organization only.
	RowsPerStrip int

	Compression         int
	Predictor           int
	PlanarConfiguration int
	Photometric         int
}

// scalarTypes maps the (SampleFormat, BitsPerSample) pairs to a scalar type.
var scalarTypes = [...]struct {
	format SampleFormat
	bits   int
	typ    pixel.Type
}{
	{SampleUnsigned, 8, pixel.Uint8},
	{SampleUnsigned, 16, pixel.Uint16},
	{SampleUnsigned, 32, pixel.Uint32},
	{SampleUnsigned, 64, pixel.Uint64},
	{SampleSigned, 8, pixel.Int8},
	{SampleSigned, 16, pixel.Int16},
	{SampleSigned, 32, pixel.Int32},
	{SampleSigned, 64, pixel.Int64},
	{SampleFloat, 16, pixel.Float16},
	{SampleFloat, 32, pixel.Float32},
	{SampleFloat, 64, pixel.Float64},
}

// scalarType returns the scalar type of a sample encoding.
func scalarType(format SampleFormat, bits int) (pixel.Type, bool) {
	for _, e := range scalarTypes {
		if e.format == format && e.bits == bits {
			return e.typ, true
		}
	}
	return pixel.Invalid, false
}

// sampleFormatOf returns the SampleFormat tag value describing t.
func sampleFormatOf(t pixel.Type) SampleFormat {
	switch t.Kind() {
	case pixel.KindUnsigned:
		return SampleUnsigned
	case pixel.KindSigned:
		return SampleSigned
	case pixel.KindFloat:
		return SampleFloat
	default:
		return SampleUndefined
	}
}

// resolveGeometry derives the image geometry from the directory.
func resolveGeometry(d *Directory) (g Geometry, err error) {
	for _, id := range []uint16{TagImageWidth, TagImageLength, TagBitsPerSample} {
		if !d.Has(id) {
			return g, UnsupportedError(fmt.Sprintf("missing %s tag", tagname(id)))
		}
	}

	g.Width = int(d.firstVal(TagImageWidth))
	g.Height = int(d.firstVal(TagImageLength))
	if g.Width == 0 || g.Height == 0 {
		return g, FormatError("zero image dimension")
	}

	// A missing SamplesPerPixel means one sample, the baseline default.
	g.SamplesPerPixel = 1
	if d.Has(TagSamplesPerPixel) {
		g.SamplesPerPixel = int(d.firstVal(TagSamplesPerPixel))
		if g.SamplesPerPixel == 0 {
			return g, FormatError("zero SamplesPerPixel")
		}
	}

	bps := d.features[TagBitsPerSample]
	if !bps.uniform() {
		return g, UnsupportedError(fmt.Sprintf("mixed BitsPerSample %v", bps.Values()))
	}
	g.BitsPerSample = int(bps.FirstVal())

	g.SampleFormat = SampleUnsigned
	if sf, ok := d.Tag(TagSampleFormat); ok {
		if !sf.uniform() {
			return g, UnsupportedError(fmt.Sprintf("mixed SampleFormat %v", sf.Values()))
		}
		g.SampleFormat = SampleFormat(sf.FirstVal())
	}

	var ok bool
	if g.Type, ok = scalarType(g.SampleFormat, g.BitsPerSample); !ok {
		return g, UnsupportedError(fmt.Sprintf("%d-bit samples of format %d", g.BitsPerSample, g.SampleFormat))
	}

	// According to the spec, Compression does not have a default value,
	// but some tools interpret a missing Compression value as none so we do
	// the same.
	g.Compression = CompressionNone
	if d.Has(TagCompression) {
		g.Compression = int(d.firstVal(TagCompression))
	}
	switch g.Compression {
	case CompressionNone, CompressionLZW, CompressionDeflate, CompressionDeflateOld, CompressionPackBits:
	default:
		return g, UnsupportedError(fmt.Sprintf("compression value %d", g.Compression))
	}

	g.Predictor = prNone
	if d.Has(TagPredictor) {
		g.Predictor = int(d.firstVal(TagPredictor))
	}
	switch {
	case g.Predictor == prNone:
	case g.Predictor == prHorizontal && g.Type.Kind() != pixel.KindFloat:
	default:
		return g, UnsupportedError(fmt.Sprintf("predictor %d for %v samples", g.Predictor, g.Type))
	}

	g.PlanarConfiguration = PlanarContig
	if d.Has(TagPlanarConfiguration) {
		g.PlanarConfiguration = int(d.firstVal(TagPlanarConfiguration))
	}
	if g.PlanarConfiguration != PlanarContig && g.PlanarConfiguration != PlanarSeparate {
		return g, UnsupportedError(fmt.Sprintf("planar configuration %d", g.PlanarConfiguration))
	}

	g.Photometric = PhotometricBlackIsZero
	if d.Has(TagPhotometricInterpretation) {
		g.Photometric = int(d.firstVal(TagPhotometricInterpretation))
	}

	if d.Has(TagTileWidth) && d.Has(TagTileLength) {
		g.Organization = Tiled
		g.TileWidth = int(d.firstVal(TagTileWidth))
		g.TileHeight = int(d.firstVal(TagTileLength))
		if g.TileWidth == 0 || g.TileHeight == 0 {
			return g, FormatError("zero tile dimension")
		}
	} else {
		g.Organization = Scanline
		g.RowsPerStrip = g.Height
		if v := int(d.firstVal(TagRowsPerStrip)); v > 0 && v < g.Height {
			g.RowsPerStrip = v
		}
	}

	return g, nil
}

// maxExpansion bounds the ratio between the decoded size of an image and the
// size of its file. The supported codecs never expand more than LZW, whose
// 12-bit codes stand for at most 4094 bytes.
const maxExpansion = 1 << 12

// checkFootprint rejects images whose decoded blocks, padded to the block
// grid, overflow int or cannot be stored in a file of the given size.
func checkFootprint(g Geometry, size int64) error {
	bw, bh := g.blockSize()
	across, down := g.blockGrid()
	footprint := uint64(1)
	for _, n := range []int{across, bw, down, bh, g.SamplesPerPixel, g.Type.Size()} {
		hi, lo := bits.Mul64(footprint, uint64(n))
		if hi != 0 || lo > math.MaxInt {
			return FormatError(fmt.Sprintf("image of %dx%d %d %v samples is too large", g.Width, g.Height, g.SamplesPerPixel, g.Type))
		}
		footprint = lo
	}
	if footprint/maxExpansion > uint64(size) {
		return FormatError(fmt.Sprintf("image of %d bytes cannot be stored in %d bytes", footprint, size))
	}
	return nil
}

// blockSize returns the dimension of a strip or a tile.
func (g Geometry) blockSize() (width, height int) {
	if g.Organization == Tiled {
		return g.TileWidth, g.TileHeight
	}
	return g.Width, g.RowsPerStrip
}

// blockGrid returns the number of blocks across and down one plane.
func (g Geometry) blockGrid() (across, down int) {
	bw, bh := g.blockSize()
	return (g.Width + bw - 1) / bw, (g.Height + bh - 1) / bh
}

// planes returns the number of separately stored sample planes.
func (g Geometry) planes() int {
	if g.PlanarConfiguration == PlanarSeparate {
		return g.SamplesPerPixel
	}
	return 1
}

// blockSamples returns the number of samples per pixel stored in one block.
func (g Geometry) blockSamples() int {
	if g.PlanarConfiguration == PlanarSeparate {
		return 1
	}
	return g.SamplesPerPixel
}

// blocks holds the location of every strip or tile of an image,
// plane after plane, each plane in row-major block order.
type blocks struct {
	offsets []uint
	counts  []uint
}

// resolveBlocks reads the strip or tile locations from the directory.
func resolveBlocks(d *Directory, g Geometry, size int64) (blocks, error) {
	var b blocks
	if g.Organization == Tiled {
		b.offsets = d.features[TagTileOffsets].Values()
		b.counts = d.features[TagTileByteCounts].Values()
	} else {
		b.offsets = d.features[TagStripOffsets].Values()
		b.counts = d.features[TagStripByteCounts].Values()
	}

	// Check if we have the right number of strips/tiles, offsets and counts.
	across, down := g.blockGrid()
	n := across * down * g.planes()
	if len(b.offsets) < n || len(b.counts) < n {
		return b, FormatError("inconsistent header")
	}
	for i := 0; i < n; i++ {
		if uint64(b.offsets[i])+uint64(b.counts[i]) > uint64(size) {
			return b, FormatError(fmt.Sprintf("block %d is past the end of file", i))
		}
	}
	return b, nil
}
