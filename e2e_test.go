package tiff_test

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	tiff "github.com/mdouchement/rawtiff"
	"github.com/mdouchement/rawtiff/pixel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestRoundTripUint8(t *testing.T) {
	data := make([]uint8, 120*90)
	for i := range data {
		data[i] = uint8(i * 7)
	}
	m, err := pixel.FromSlice(1, 90, 120, data)
	require.NoError(t, err)

	decoded, err := roundTrip(t, m)
	require.NoError(t, err)
	assert.True(t, m.Equal(decoded))
}

func TestRoundTripInt8(t *testing.T) {
	data := make([]int8, 33*17)
	for i := range data {
		data[i] = int8(i*13 - 100)
	}
	m, err := pixel.FromSlice(1, 17, 33, data)
	require.NoError(t, err)

	decoded, err := roundTrip(t, m)
	require.NoError(t, err)
	values, err := pixel.Elements[int8](decoded)
	require.NoError(t, err)
	assert.Equal(t, data, values)
}

func TestRoundTripFloat16(t *testing.T) {
	data := make([]float16.Float16, 16*16)
	for i := range data {
		data[i] = float16.Fromfloat32(float32(i)/8 - 10)
	}
	m, err := pixel.FromSlice(1, 16, 16, data)
	require.NoError(t, err)

	decoded, err := roundTrip(t, m)
	require.NoError(t, err)
	assert.Equal(t, pixel.Float16, decoded.Type)
	assert.True(t, m.Equal(decoded))
}

func TestRoundTripFloat32(t *testing.T) {
	data := make([]float32, 256*3)
	for i := range data {
		data[i] = float32(i) * 1.5e-3
	}
	m, err := pixel.FromSlice(1, 3, 256, data)
	require.NoError(t, err)

	decoded, err := roundTrip(t, m)
	require.NoError(t, err)
	values, err := pixel.Elements[float32](decoded)
	require.NoError(t, err)
	assert.Equal(t, data, values)
}

func TestReadFileWindow(t *testing.T) {
	data := make([]uint16, 64*48)
	for i := range data {
		data[i] = uint16(i)
	}
	m, err := pixel.FromSlice(1, 48, 64, data)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "window.tif")
	require.NoError(t, tiff.WriteFile(path, m, &tiff.Options{Compression: tiff.CompressionPackBits}))

	// Rows 10..20 and columns 1..64 of the image, 1-based inclusive.
	w, err := tiff.ReadFileWindow(path, image.Rect(0, 9, 64, 20))
	require.NoError(t, err)
	assert.Equal(t, 11, w.Rows)
	assert.Equal(t, 64, w.Cols)
	values, err := pixel.Elements[uint16](w)
	require.NoError(t, err)
	assert.Equal(t, data[9*64:20*64], values)

	_, err = tiff.ReadFileWindow(path, image.Rect(0, 0, 64, 49))
	assert.IsType(t, tiff.BoundsError{}, errors.Cause(err))
}

func TestDirectoryDump(t *testing.T) {
	m, err := pixel.New(pixel.Uint32, 1, 2, 2)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "dump.tif")
	require.NoError(t, tiff.WriteFile(path, m, nil))

	err = tiff.With(path, tiff.ModeRead, func(s *tiff.Session) error {
		dump := s.Directory().String()
		assert.Contains(t, dump, "Compression: None")
		assert.Contains(t, dump, "SampleFormat: Unsigned integer")
		assert.Contains(t, dump, "PlanarConfiguration: Contiguous (aka RGBRGBRGBRGB)")
		assert.Contains(t, dump, "Bounds: 2x2")
		return nil
	})
	assert.NoError(t, err)
}

///////////////////////////
//                       //
// Benchmarks            //
//                       //
///////////////////////////

// go test -run=NONE -bench=.

var decoded *pixel.Buffer

func BenchmarkReadScanline(b *testing.B) {
	m, err := pixel.New(pixel.Float32, 1, 512, 512)
	require.NoError(b, err)
	path := filepath.Join(b.TempDir(), "bench.tif")
	require.NoError(b, tiff.WriteFile(path, m, nil))

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		decoded, err = tiff.ReadFile(path)
	}
	assert.NoError(b, err)
}

///////////////////////////
//                       //
// Helpers               //
//                       //
///////////////////////////

func roundTrip(t *testing.T, m *pixel.Buffer) (*pixel.Buffer, error) {
	path := filepath.Join(t.TempDir(), "roundtrip.tif")
	if err := tiff.WriteFile(path, m, nil); err != nil {
		return nil, errors.Wrap(err, "could not write image")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "could not stat image")
	}

	m, err := tiff.ReadFile(path)
	return m, errors.Wrap(err, "could not read image")
}
