package tiff

import (
	"fmt"
	"image"
	"math/big"

	"github.com/pkg/errors"
)

// A FormatError reports that the input is not a valid TIFF image.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("tiff: invalid format: %s", string(e))
}

// An UnsupportedError reports that the input uses a valid but
// unimplemented feature.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("tiff: unsupported feature: %s", string(e))
}

// An InternalError reports that an internal error was encountered.
type InternalError string

func (e InternalError) Error() string {
	return fmt.Sprintf("tiff: internal error: %s", string(e))
}

// A BoundsError reports a window that is empty or not contained in the image.
type BoundsError struct {
	Window image.Rectangle
	Bounds image.Rectangle
}

func (e BoundsError) Error() string {
	return fmt.Sprintf("tiff: window %v out of image bounds %v", e.Window, e.Bounds)
}

// A NativeIOError reports a failure of the underlying file handle.
type NativeIOError struct {
	Op  string
	Err error
}

func (e *NativeIOError) Error() string {
	return fmt.Sprintf("tiff: native %s: %v", e.Op, e.Err)
}

// Unwrap returns the handle error.
func (e *NativeIOError) Unwrap() error { return e.Err }

// Cause implements the github.com/pkg/errors causer.
func (e *NativeIOError) Cause() error { return e.Err }

func nativeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &NativeIOError{Op: op, Err: errors.WithStack(err)}
}

// minInt returns the smaller of x or y.
func minInt(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

// checkWindow validates r against an image of the given size.
func checkWindow(r image.Rectangle, width, height int) error {
	bounds := image.Rect(0, 0, width, height)
	if r.Empty() || !r.In(bounds) {
		return BoundsError{Window: r, Bounds: bounds}
	}
	return nil
}

func tagname(t uint16) string {
	switch t {
	case TagImageWidth:
		return "ImageWidth"
	case TagImageLength:
		return "ImageLength"
	case TagBitsPerSample:
		return "BitsPerSample"
	case TagCompression:
		return "Compression"
	case TagPhotometricInterpretation:
		return "PhotometricInterpretation"
	case TagStripOffsets:
		return "StripOffsets"
	case TagOrientation:
		return "Orientation"
	case TagSamplesPerPixel:
		return "SamplesPerPixel"
	case TagRowsPerStrip:
		return "RowsPerStrip"
	case TagStripByteCounts:
		return "StripByteCounts"
	case TagXResolution:
		return "XResolution"
	case TagYResolution:
		return "YResolution"
	case TagPlanarConfiguration:
		return "PlanarConfiguration"
	case TagResolutionUnit:
		return "ResolutionUnit"
	case TagPredictor:
		return "Predictor"
	case TagTileWidth:
		return "TileWidth"
	case TagTileLength:
		return "TileLength"
	case TagTileOffsets:
		return "TileOffsets"
	case TagTileByteCounts:
		return "TileByteCounts"
	case TagExtraSamples:
		return "ExtraSamples"
	case TagSampleFormat:
		return "SampleFormat"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

func valuename(t Tag) string {
	var v interface{}
	switch t.ID {
	case TagPhotometricInterpretation:
		switch t.FirstVal() {
		case PhotometricWhiteIsZero:
			v = "WhiteIsZero"
		case PhotometricBlackIsZero:
			v = "BlackIsZero"
		case PhotometricRGB:
			v = "RGB"
		case PhotometricPaletted:
			v = "Paletted"
		case PhotometricTransMask:
			v = "TransMask"
		case PhotometricCMYK:
			v = "CMYK"
		case PhotometricYCbCr:
			v = "YCbCr"
		case PhotometricCIELab:
			v = "CIE-Lab"
		default:
			v = t.FirstVal()
		}
	case TagCompression:
		switch t.FirstVal() {
		case CompressionNone:
			v = "None"
		case CompressionCCITT:
			v = "CCITT"
		case CompressionG3:
			v = "Group 3 Fax"
		case CompressionG4:
			v = "Group 4 Fax"
		case CompressionLZW:
			v = "LZW"
		case CompressionJPEGOld:
			v = "Old JPEG"
		case CompressionJPEG:
			v = "JPEG"
		case CompressionDeflate:
			v = "Deflate (zlib compression)"
		case CompressionPackBits:
			v = "PackBits"
		case CompressionDeflateOld:
			v = "Old Deflate"
		default:
			v = t.FirstVal()
		}
	case TagStripOffsets, TagTileOffsets:
		v = fmt.Sprintf("contains %d offset entries", len(t.val))
	case TagStripByteCounts, TagTileByteCounts:
		v = fmt.Sprintf("contains %d byte-count entries", len(t.val))
	case TagSamplesPerPixel,
		TagRowsPerStrip,
		TagTileWidth,
		TagTileLength,
		TagImageLength,
		TagImageWidth,
		TagOrientation:
		v = t.FirstVal()
	case TagPlanarConfiguration:
		switch t.FirstVal() {
		case PlanarContig:
			v = "Contiguous (aka RGBRGBRGBRGB)"
		case PlanarSeparate:
			v = "Separate (aka RRRRGGGGBBBB)"
		default:
			v = t.FirstVal()
		}
	case TagSampleFormat:
		switch SampleFormat(t.FirstVal()) {
		case SampleUnsigned:
			v = "Unsigned integer"
		case SampleSigned:
			v = "Signed integer"
		case SampleFloat:
			v = "IEEE floating point"
		default:
			v = "Undefined"
		}
	default:
		v = formatDatatype(t)
	}
	return fmt.Sprintf("%v", v)
}

func formatDatatype(t Tag) interface{} {
	switch t.DataType {
	case DTASCII:
		b := make([]byte, 0, len(t.val))
		for _, c := range t.val {
			if c == 0 {
				break
			}
			b = append(b, byte(c))
		}
		return string(b)
	case DTRational, DTSRational:
		sl := make([]*big.Rat, 0, len(t.val))
		for i := range t.val {
			sl = append(sl, t.rational(i))
		}
		return sl
	case DTFloat, DTDouble:
		sl := make([]float64, 0, len(t.val))
		for i := range t.val {
			sl = append(sl, t.AsFloat(i))
		}
		return sl
	case DTSByte, DTSShort, DTSLong:
		sl := make([]int64, 0, len(t.val))
		for i := range t.val {
			sl = append(sl, t.Int(i))
		}
		return sl
	default:
		return t.Values()
	}
}
