package tiff

// A tiff image file contains one or more images. The metadata
// of each image is contained in an Image File Directory (IFD),
// which contains entries of 12 bytes each and is described
// on page 14-16 of the specification. An IFD entry consists of
//
//  - a tag, which describes the signification of the entry,
//  - the data type and length of the entry,
//  - the data itself or a pointer to it if it is more than 4 bytes.
//
// The presence of a length means that each IFD is effectively an array.

const (
	leHeader = "II\x2A\x00" // Header for little-endian files.
	beHeader = "MM\x00\x2A" // Header for big-endian files.

	headerLen = 8
	ifdLen    = 12 // Length of an IFD entry in bytes.

	bigTIFFVersion = 43
)

// DataType is the type code of an IFD entry (p. 14-16 of the spec).
type DataType uint16

// Data types.
const (
	DTByte      DataType = 1
	DTASCII     DataType = 2
	DTShort     DataType = 3
	DTLong      DataType = 4
	DTRational  DataType = 5
	DTSByte     DataType = 6
	DTUndefined DataType = 7
	DTSShort    DataType = 8
	DTSLong     DataType = 9
	DTSRational DataType = 10
	DTFloat     DataType = 11
	DTDouble    DataType = 12
)

// The length of one instance of each data type in bytes.
var lengths = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Size returns the length in bytes of one value of the type, 0 if unknown.
func (dt DataType) Size() uint32 {
	if int(dt) >= len(lengths) {
		return 0
	}
	return lengths[dt]
}

// Tags (see p. 28-41 of the spec).
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262

	TagStripOffsets    = 273
	TagOrientation     = 274
	TagSamplesPerPixel = 277
	TagRowsPerStrip    = 278
	TagStripByteCounts = 279

	TagXResolution         = 282
	TagYResolution         = 283
	TagPlanarConfiguration = 284
	TagResolutionUnit      = 296

	TagPredictor      = 317
	TagTileWidth      = 322
	TagTileLength     = 323
	TagTileOffsets    = 324
	TagTileByteCounts = 325

	TagExtraSamples = 338
	TagSampleFormat = 339
)

// Compression types (defined in various places in the spec and supplements).
const (
	CompressionNone       = 1
	CompressionCCITT      = 2
	CompressionG3         = 3 // Group 3 Fax.
	CompressionG4         = 4 // Group 4 Fax.
	CompressionLZW        = 5
	CompressionJPEGOld    = 6 // Superseded by CompressionJPEG.
	CompressionJPEG       = 7
	CompressionDeflate    = 8 // zlib compression.
	CompressionPackBits   = 32773
	CompressionDeflateOld = 32946 // Superseded by CompressionDeflate.
)

// Photometric interpretation values (see p. 37 of the spec).
const (
	PhotometricWhiteIsZero = 0
	PhotometricBlackIsZero = 1
	PhotometricRGB         = 2
	PhotometricPaletted    = 3
	PhotometricTransMask   = 4 // transparency mask
	PhotometricCMYK        = 5
	PhotometricYCbCr       = 6
	PhotometricCIELab      = 8
)

// Values for the PlanarConfiguration tag (p. 38 of the spec).
const (
	PlanarContig   = 1 // RGBRGBRGB
	PlanarSeparate = 2 // RRRGGGBBB
)

// Values for the Predictor tag (page 64-65 of the spec).
const (
	prNone          = 1
	prHorizontal    = 2
	prFloatingPoint = 3 // Floating point horizontal differencing, a third specification supplement from Adobe
)

// SampleFormat is the value of the SampleFormat tag (TIFF supplement 3).
type SampleFormat uint16

// Sample formats.
const (
	SampleUnsigned  SampleFormat = 1
	SampleSigned    SampleFormat = 2
	SampleFloat     SampleFormat = 3
	SampleUndefined SampleFormat = 4
)

const orientationTopLeft = 1

// ExtraSamples value of an alpha channel not premultiplied into the colors.
const extraSamplesUnassociated = 2

// Organization is the way pixel data blocks are laid out in a file.
type Organization int

// Organizations.
const (
	Scanline Organization = iota
	Tiled
)

func (o Organization) String() string {
	if o == Tiled {
		return "tiled"
	}
	return "scanline"
}
