package tiff

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/mdouchement/rawtiff/pixel"
	"github.com/stretchr/testify/require"
)

// memFile is an in-memory File counting the native calls.
type memFile struct {
	data     []byte
	reads    int
	closes   int
	closeErr error
}

func newMemFile(data []byte) *memFile {
	return &memFile{data: data}
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	f.reads++
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) Close() error {
	f.closes++
	return f.closeErr
}

func (f *memFile) Len() int {
	return len(f.data)
}

// encodeBytes encodes m in memory.
func encodeBytes(t testing.TB, m *pixel.Buffer, opts *Options) []byte {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, opts))
	return buf.Bytes()
}

// rawTIFF returns a little-endian file made of a header, data at offset 8
// and the directory d.
func rawTIFF(t testing.TB, data []byte, d ifd) []byte {
	var buf bytes.Buffer
	buf.WriteString(leHeader)
	ifdOffset := headerLen + len(data) + len(data)%2
	binary.Write(&buf, enc, uint32(ifdOffset))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
	require.NoError(t, writeIFD(&buf, ifdOffset, d))
	return buf.Bytes()
}

// gradient returns a buffer whose samples are all distinct, modulo the type range.
func gradient(t testing.TB, typ pixel.Type, channels, rows, cols int) *pixel.Buffer {
	m, err := pixel.New(typ, channels, rows, cols)
	require.NoError(t, err)
	i := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for c := 0; c < channels; c++ {
				v := float64(i % 120)
				if typ.Kind() == pixel.KindSigned {
					v -= 60
				}
				if typ.Kind() == pixel.KindFloat {
					v = v/4 - 7.25
				}
				m.SetValue(x, y, c, v)
				i++
			}
		}
	}
	return m
}

// padding is the value of the tile bytes lying outside of the image.
const padding = 0xAB

type tiledFixture struct {
	tileWidth   int
	tileHeight  int
	planar      int
	compression int
	predictor   bool
}

// encodeTiled writes m as a little-endian tiled image.
func encodeTiled(t testing.TB, m *pixel.Buffer, fx tiledFixture) []byte {
	tw, th := fx.tileWidth, fx.tileHeight
	across := (m.Cols + tw - 1) / tw
	down := (m.Rows + th - 1) / th
	size := m.Type.Size()

	planes, spp := 1, m.Channels
	if fx.planar == PlanarSeparate {
		planes, spp = m.Channels, 1
	}
	compression := fx.compression
	if compression == 0 {
		compression = CompressionNone
	}

	var data bytes.Buffer
	var offsets, counts []uint32
	for plane := 0; plane < planes; plane++ {
		for ty := 0; ty < down; ty++ {
			for tx := 0; tx < across; tx++ {
				tile := bytes.Repeat([]byte{padding}, tw*th*spp*size)
				for row := 0; row < th; row++ {
					for col := 0; col < tw; col++ {
						x, y := tx*tw+col, ty*th+row
						if x >= m.Cols || y >= m.Rows {
							continue
						}
						for c := 0; c < spp; c++ {
							src := (y*m.Cols+x)*m.PixelSize() + (c+plane)*size
							dst := ((row*tw+col)*spp + c) * size
							copy(tile[dst:dst+size], m.Pix[src:src+size])
						}
					}
				}
				if fx.predictor {
					applyHorizontalPredictor(tile, tw, spp, size)
				}
				p, err := compress(compression, tile)
				require.NoError(t, err)

				offsets = append(offsets, uint32(headerLen+data.Len()))
				counts = append(counts, uint32(len(p)))
				data.Write(p)
			}
		}
	}

	bits := make([]uint32, m.Channels)
	formats := make([]uint32, m.Channels)
	for i := range bits {
		bits[i] = uint32(m.Type.Bits())
		formats[i] = uint32(sampleFormatOf(m.Type))
	}
	d := ifd{
		{TagImageWidth, DTLong, []uint32{uint32(m.Cols)}},
		{TagImageLength, DTLong, []uint32{uint32(m.Rows)}},
		{TagBitsPerSample, DTShort, bits},
		{TagCompression, DTShort, []uint32{uint32(compression)}},
		{TagPhotometricInterpretation, DTShort, []uint32{PhotometricBlackIsZero}},
		{TagSamplesPerPixel, DTShort, []uint32{uint32(m.Channels)}},
		{TagPlanarConfiguration, DTShort, []uint32{uint32(fx.planar)}},
		{TagTileWidth, DTShort, []uint32{uint32(tw)}},
		{TagTileLength, DTShort, []uint32{uint32(th)}},
		{TagTileOffsets, DTLong, offsets},
		{TagTileByteCounts, DTLong, counts},
		{TagSampleFormat, DTShort, formats},
	}
	if fx.planar == 0 {
		d[6].data = []uint32{PlanarContig}
	}
	if fx.predictor {
		d = append(d, ifdEntry{TagPredictor, DTShort, []uint32{prHorizontal}})
	}
	return rawTIFF(t, data.Bytes(), d)
}

// applyHorizontalPredictor is the inverse of undoHorizontalPredictor.
func applyHorizontalPredictor(p []byte, width, spp, size int) {
	stride := width * spp * size
	le := binary.LittleEndian
	for row := 0; row+stride <= len(p); row += stride {
		line := p[row : row+stride]
		for i := stride - size; i >= spp*size; i -= size {
			j := i - spp*size
			switch size {
			case 1:
				line[i] -= line[j]
			case 2:
				le.PutUint16(line[i:], le.Uint16(line[i:])-le.Uint16(line[j:]))
			case 4:
				le.PutUint32(line[i:], le.Uint32(line[i:])-le.Uint32(line[j:]))
			case 8:
				le.PutUint64(line[i:], le.Uint64(line[i:])-le.Uint64(line[j:]))
			}
		}
	}
}
