package tiff

import (
	"bytes"
	"image"
	"testing"

	"github.com/mdouchement/rawtiff/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileRead(t *testing.T) {
	tests := []struct {
		name     string
		typ      pixel.Type
		channels int
		fixture  tiledFixture
	}{
		{"uint8", pixel.Uint8, 1, tiledFixture{tileWidth: 16, tileHeight: 16}},
		{"uint16 rgb", pixel.Uint16, 3, tiledFixture{tileWidth: 16, tileHeight: 8, planar: PlanarContig}},
		{"float32 separate", pixel.Float32, 3, tiledFixture{tileWidth: 8, tileHeight: 16, planar: PlanarSeparate}},
		{"int16 deflate predictor", pixel.Int16, 2, tiledFixture{tileWidth: 16, tileHeight: 16, compression: CompressionDeflate, predictor: true}},
		{"float64 packbits", pixel.Float64, 1, tiledFixture{tileWidth: 32, tileHeight: 16, compression: CompressionPackBits}},
		{"float16", pixel.Float16, 1, tiledFixture{tileWidth: 16, tileHeight: 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 37x23 is not a multiple of any tile size.
			m := gradient(t, tt.typ, tt.channels, 23, 37)
			data := encodeTiled(t, m, tt.fixture)

			s, err := NewSession(newMemFile(data))
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, Tiled, s.Geometry().Organization)
			assert.Equal(t, tt.typ, s.ElementType())

			full, err := s.Read()
			require.NoError(t, err)
			assert.True(t, m.Equal(full))
		})
	}
}

func TestTileWindowEqualsCrop(t *testing.T) {
	m := gradient(t, pixel.Uint16, 2, 23, 37)
	data := encodeTiled(t, m, tiledFixture{tileWidth: 16, tileHeight: 8})

	s, err := NewSession(newMemFile(data))
	require.NoError(t, err)
	defer s.Close()
	full, err := s.Read()
	require.NoError(t, err)

	ys := []int{0, 1, 7, 8, 15, 16, 22, 23}
	xs := []int{0, 1, 15, 16, 17, 31, 32, 36, 37}
	for _, y0 := range ys {
		for _, y1 := range ys {
			for _, x0 := range xs {
				for _, x1 := range xs {
					r := image.Rect(x0, y0, x1, y1)
					if y1 <= y0 || x1 <= x0 {
						continue
					}
					w, err := s.ReadWindow(r)
					require.NoError(t, err, "%v", r)
					expected, err := full.Crop(r)
					require.NoError(t, err)
					assert.True(t, expected.Equal(w), "%v", r)
				}
			}
		}
	}
}

func TestTileEdgeWindowHasNoPadding(t *testing.T) {
	// Values never reach the padding byte.
	m := gradient(t, pixel.Uint8, 1, 20, 20)
	data := encodeTiled(t, m, tiledFixture{tileWidth: 16, tileHeight: 16})

	s, err := NewSession(newMemFile(data))
	require.NoError(t, err)
	defer s.Close()

	// Last row and column of tiles.
	w, err := s.ReadWindow(image.Rect(14, 14, 20, 20))
	require.NoError(t, err)
	assert.Equal(t, 6, w.Rows)
	assert.Equal(t, 6, w.Cols)
	assert.Len(t, w.Pix, 36)
	assert.NotContains(t, string(w.Pix), string([]byte{padding}))

	expected, err := m.Crop(image.Rect(14, 14, 20, 20))
	require.NoError(t, err)
	assert.True(t, expected.Equal(w))

	w, err = s.ReadWindow(image.Rect(19, 0, 20, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, w.Cols)
	assert.Equal(t, 20, w.Rows)
	assert.NotContains(t, string(w.Pix), string([]byte{padding}))
}

func TestTileShortBlock(t *testing.T) {
	m := gradient(t, pixel.Uint8, 1, 4, 4)
	data := encodeTiled(t, m, tiledFixture{tileWidth: 4, tileHeight: 4})

	// Declare only the first 2 rows of the single tile.
	d, err := parse(t, data)
	require.NoError(t, err)
	tag, _ := d.Tag(TagTileByteCounts)
	tag.val[0] = 8
	d.features[TagTileByteCounts] = tag

	dec := &decoder{Directory: d, r: bytes.NewReader(data), size: int64(len(data))}
	dec.geometry, err = resolveGeometry(d)
	require.NoError(t, err)
	dec.blocks, err = resolveBlocks(d, dec.geometry, dec.size)
	require.NoError(t, err)

	w, err := newCodec(dec).read(image.Rect(0, 0, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, m.Pix[:8], w.Pix[:8])
	assert.Equal(t, make([]byte, 8), w.Pix[8:])
}
