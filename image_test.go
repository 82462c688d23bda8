package tiff

import (
	"image"
	"image/color"
	"testing"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdrtool"
	"github.com/mdouchement/rawtiff/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageGray(t *testing.T) {
	m, err := pixel.FromSlice(1, 2, 2, []uint8{1, 2, 3, 4})
	require.NoError(t, err)
	img, err := Image(m)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, color.Gray{Y: 3}, gray.GrayAt(0, 1))

	m16, err := pixel.FromSlice(1, 1, 2, []uint16{0x0102, 0xFFFE})
	require.NoError(t, err)
	img, err = Image(m16)
	require.NoError(t, err)
	gray16, ok := img.(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, color.Gray16{Y: 0xFFFE}, gray16.Gray16At(1, 0))
}

func TestImageRGBA(t *testing.T) {
	m, err := pixel.FromSlice(3, 1, 2, []uint8{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	img, err := Image(m)
	require.NoError(t, err)
	rgba := img.(*image.RGBA)
	assert.Equal(t, color.RGBA{R: 4, G: 5, B: 6, A: 255}, rgba.RGBAAt(1, 0))

	m, err = pixel.FromSlice(4, 1, 1, []uint8{10, 20, 30, 40})
	require.NoError(t, err)
	img, err = Image(m)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 40}, img.(*image.RGBA).RGBAAt(0, 0))

	m, err = pixel.FromSlice(2, 1, 1, []int32{1, 2})
	require.NoError(t, err)
	_, err = Image(m)
	assert.Equal(t, UnsupportedError("image conversion of 2 int32 channels"), err)
}

func TestImageHDR(t *testing.T) {
	rgb := gradient(t, pixel.Float32, 3, 32, 32)
	img, err := Image(rgb)
	require.NoError(t, err)
	hm, ok := img.(hdr.Image)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 32, 32), hm.Bounds())

	// Same samples held as float64.
	f64 := gradient(t, pixel.Float64, 3, 32, 32)
	other, err := Image(f64)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hdrtool.HDRSSIM(hm, other.(hdr.Image)), 1e-9)

	gray := gradient(t, pixel.Float16, 1, 8, 8)
	img, err = Image(gray)
	require.NoError(t, err)
	_, ok = img.(hdr.Image)
	assert.True(t, ok)
}
