package tiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/mdouchement/rawtiff/pixel"
)

// The TIFF format allows to choose the order of the different elements freely.
// The basic structure of a TIFF file written by this package is:
//
//   1. Header (8 bytes).
//   2. Strips, plane after plane.
//   3. Image File Directory (IFD).
//   4. "Pointer area" for larger entries in the IFD.

// We only write little-endian TIFF files.
var enc = binary.LittleEndian

// defaultStripSize is the targeted size in bytes of a written strip.
const defaultStripSize = 8192

// Options are the encoding parameters. Zero fields take their default.
//
// PhotometricWhiteIsZero is a zero code, hence Photometric is a pointer and a
// nil Photometric means PhotometricBlackIsZero. Multi-channel images read back
// by this package must be written as PhotometricRGB with 3 or 4 channels, the
// fourth one being written as an unassociated alpha channel.
type Options struct {
	Compression         int  // CompressionNone (default), CompressionDeflate or CompressionPackBits.
	PlanarConfiguration int  // PlanarContig (default) or PlanarSeparate.
	Photometric         *int // PhotometricBlackIsZero (default).
	RowsPerStrip        int  // Default targets 8 KiB strips.
}

// Photometric returns a pointer to v, to be used as Options.Photometric.
func Photometric(v int) *int {
	return &v
}

// photometric returns the photometric interpretation to write.
func (opts Options) photometric() int {
	if opts.Photometric == nil {
		return PhotometricBlackIsZero
	}
	return *opts.Photometric
}

// withDefaults returns a copy of opts with the defaults set.
func (opts *Options) withDefaults() Options {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Compression == 0 {
		o.Compression = CompressionNone
	}
	if o.PlanarConfiguration == 0 {
		o.PlanarConfiguration = PlanarContig
	}
	return o
}

// defaultRowsPerStrip returns the number of rows of a strip of about
// defaultStripSize bytes, at least one.
func defaultRowsPerStrip(width, spp, size int) int {
	scanline := width * spp * size
	if scanline == 0 {
		return 1
	}
	if rows := defaultStripSize / scanline; rows > 0 {
		return rows
	}
	return 1
}

// An ifdEntry is a single entry in an Image File Directory.
// A value of type DTRational is composed of two 32-bit values,
// thus data contains two uints (numerator and denominator) for a single number.
type ifdEntry struct {
	tag      int
	datatype DataType
	data     []uint32
}

func (e ifdEntry) count() uint32 {
	if e.datatype == DTRational {
		return uint32(len(e.data) / 2)
	}
	return uint32(len(e.data))
}

func (e ifdEntry) putData(p []byte) {
	for _, d := range e.data {
		switch e.datatype {
		case DTByte, DTASCII:
			p[0] = byte(d)
			p = p[1:]
		case DTShort:
			enc.PutUint16(p, uint16(d))
			p = p[2:]
		case DTLong, DTRational:
			enc.PutUint32(p, d)
			p = p[4:]
		}
	}
}

type ifd []ifdEntry

func (d ifd) Len() int {
	return len(d)
}

func (d ifd) Less(i, j int) bool {
	return d[i].tag < d[j].tag
}

func (d ifd) Swap(i, j int) {
	d[i], d[j] = d[j], d[i]
}

// writeIFD writes the directory d located at ifdOffset, followed by its pointer area.
func writeIFD(w io.Writer, ifdOffset int, d ifd) error {
	var buf bytes.Buffer
	var parea bytes.Buffer
	pstart := ifdOffset + 2 + ifdLen*len(d) + 4

	// The IFD has to be written with the tags in ascending order.
	sort.Sort(d)

	var entry [ifdLen]byte
	binary.Write(&buf, enc, uint16(len(d)))
	for _, ent := range d {
		enc.PutUint16(entry[0:2], uint16(ent.tag))
		enc.PutUint16(entry[2:4], uint16(ent.datatype))
		enc.PutUint32(entry[4:8], ent.count())
		datalen := int(ent.count() * ent.datatype.Size())
		entry[8], entry[9], entry[10], entry[11] = 0, 0, 0, 0
		if datalen <= 4 {
			ent.putData(entry[8:12])
		} else {
			p := make([]byte, datalen+datalen%2) // Values start on a word boundary.
			ent.putData(p)
			enc.PutUint32(entry[8:12], uint32(pstart+parea.Len()))
			parea.Write(p)
		}
		buf.Write(entry[:])
	}
	// The IFD ends with the offset of the next IFD in the file,
	// or zero if it is the last one (page 14).
	binary.Write(&buf, enc, uint32(0))
	buf.Write(parea.Bytes())

	_, err := w.Write(buf.Bytes())
	return nativeError("write", err)
}

//------------------------//
// Scanline writer        //
//------------------------//

// encoder writes a strip organized image. Rows are written in increasing
// order, plane after plane, and grouped into strips.
type encoder struct {
	opts         Options
	rowsPerStrip int
	strips       [][]byte
	pending      []byte
	rows         int // Rows in pending.
}

func newEncoder(m *pixel.Buffer, opts *Options) (*encoder, error) {
	o := opts.withDefaults()
	switch o.Compression {
	case CompressionNone, CompressionDeflate, CompressionPackBits:
	default:
		return nil, UnsupportedError(fmt.Sprintf("compression value %d for writing", o.Compression))
	}
	if o.PlanarConfiguration != PlanarContig && o.PlanarConfiguration != PlanarSeparate {
		return nil, UnsupportedError(fmt.Sprintf("planar configuration %d", o.PlanarConfiguration))
	}

	e := &encoder{opts: o, rowsPerStrip: o.RowsPerStrip}
	if e.rowsPerStrip <= 0 {
		spp := m.Channels
		if o.PlanarConfiguration == PlanarSeparate {
			spp = 1
		}
		e.rowsPerStrip = defaultRowsPerStrip(m.Cols, spp, m.Type.Size())
	}
	e.rowsPerStrip = minInt(e.rowsPerStrip, m.Rows)
	return e, nil
}

// writeRow appends one row to the current strip.
func (e *encoder) writeRow(row []byte) error {
	e.pending = append(e.pending, row...)
	e.rows++
	if e.rows == e.rowsPerStrip {
		return e.flushStrip()
	}
	return nil
}

// flushStrip compresses the pending rows as a new strip.
func (e *encoder) flushStrip() error {
	if e.rows == 0 {
		return nil
	}
	strip, err := compress(e.opts.Compression, e.pending)
	if err != nil {
		return err
	}
	e.strips = append(e.strips, append([]byte(nil), strip...))
	e.pending = e.pending[:0]
	e.rows = 0
	return nil
}

// encode writes the rows of m, plane after plane for a separate configuration.
func (e *encoder) encode(m *pixel.Buffer) error {
	if e.opts.PlanarConfiguration == PlanarContig {
		for y := 0; y < m.Rows; y++ {
			if err := e.writeRow(m.Row(y)); err != nil {
				return err
			}
		}
		return e.flushStrip()
	}

	size := m.Type.Size()
	psize := m.PixelSize()
	row := make([]byte, m.Cols*size)
	for c := 0; c < m.Channels; c++ {
		for y := 0; y < m.Rows; y++ {
			src := m.Row(y)
			for x := 0; x < m.Cols; x++ {
				i := x*psize + c*size
				copy(row[x*size:], src[i:i+size])
			}
			if err := e.writeRow(row); err != nil {
				return err
			}
		}
		// Strips never span two planes.
		if err := e.flushStrip(); err != nil {
			return err
		}
	}
	return nil
}

// finish writes the header, the strips and the directory describing m.
func (e *encoder) finish(w io.Writer, m *pixel.Buffer) error {
	offsets := make([]uint32, len(e.strips))
	counts := make([]uint32, len(e.strips))
	off := headerLen
	for i, s := range e.strips {
		offsets[i] = uint32(off)
		counts[i] = uint32(len(s))
		off += len(s)
	}
	pad := off % 2 // The IFD starts on a word boundary.
	ifdOffset := off + pad

	header := make([]byte, headerLen)
	copy(header, leHeader)
	enc.PutUint32(header[4:8], uint32(ifdOffset))
	if _, err := w.Write(header); err != nil {
		return nativeError("write", err)
	}
	for _, s := range e.strips {
		if _, err := w.Write(s); err != nil {
			return nativeError("write", err)
		}
	}
	if pad > 0 {
		if _, err := w.Write([]byte{0}); err != nil {
			return nativeError("write", err)
		}
	}

	bits := make([]uint32, m.Channels)
	formats := make([]uint32, m.Channels)
	for i := range bits {
		bits[i] = uint32(m.Type.Bits())
		formats[i] = uint32(sampleFormatOf(m.Type))
	}

	photometric := e.opts.photometric()
	d := ifd{
		{TagImageWidth, DTLong, []uint32{uint32(m.Cols)}},
		{TagImageLength, DTLong, []uint32{uint32(m.Rows)}},
		{TagBitsPerSample, DTShort, bits},
		{TagCompression, DTShort, []uint32{uint32(e.opts.Compression)}},
		{TagPhotometricInterpretation, DTShort, []uint32{uint32(photometric)}},
		{TagStripOffsets, DTLong, offsets},
		{TagOrientation, DTShort, []uint32{orientationTopLeft}},
		{TagSamplesPerPixel, DTShort, []uint32{uint32(m.Channels)}},
		{TagRowsPerStrip, DTLong, []uint32{uint32(e.rowsPerStrip)}},
		{TagStripByteCounts, DTLong, counts},
		{TagPlanarConfiguration, DTShort, []uint32{uint32(e.opts.PlanarConfiguration)}},
		{TagSampleFormat, DTShort, formats},
	}
	if photometric == PhotometricRGB && m.Channels == 4 {
		d = append(d, ifdEntry{TagExtraSamples, DTShort, []uint32{extraSamplesUnassociated}})
	}
	return writeIFD(w, ifdOffset, d)
}

// Encode writes m to w as a strip organized TIFF image.
// Options may be nil, in which case the defaults are used.
func Encode(w io.Writer, m *pixel.Buffer, opts *Options) error {
	if m == nil || m.Rows == 0 || m.Cols == 0 {
		return UnsupportedError("empty image")
	}
	if m.Type.Size() == 0 {
		return UnsupportedError(fmt.Sprintf("sample type %v", m.Type))
	}

	e, err := newEncoder(m, opts)
	if err != nil {
		return err
	}
	if err = e.encode(m); err != nil {
		return err
	}
	return e.finish(w, m)
}
