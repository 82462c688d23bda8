package tiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

//------------------------//
// Header parser          //
//------------------------//

// Directory is the tag directory of the first image of a file.
// It is read-only once parsed.
type Directory struct {
	ByteOrder binary.ByteOrder
	Offset    int64  // Offset of the IFD in the file.
	Next      uint32 // Offset of the next IFD, never followed.
	features  map[uint16]Tag
}

// readAt reads len(p) bytes at off, failing with a FormatError when the
// requested span is outside of a file of the given size.
func readAt(r io.ReaderAt, size int64, p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > size {
		return FormatError(fmt.Sprintf("%d bytes at offset %d are past the end of file", len(p), off))
	}
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return nativeError("read", err)
}

func readDirectory(r io.ReaderAt, size int64) (*Directory, error) {
	d := &Directory{
		features: make(map[uint16]Tag),
	}

	p := make([]byte, headerLen)
	if err := readAt(r, size, p, 0); err != nil {
		if _, ok := err.(FormatError); ok {
			return nil, FormatError("short header")
		}
		return nil, err
	}
	switch string(p[0:2]) {
	case leHeader[0:2]:
		d.ByteOrder = binary.LittleEndian
	case beHeader[0:2]:
		d.ByteOrder = binary.BigEndian
	default:
		return nil, FormatError("malformed header")
	}
	switch d.ByteOrder.Uint16(p[2:4]) {
	case 42:
	case bigTIFFVersion:
		return nil, UnsupportedError("BigTIFF")
	default:
		return nil, FormatError("malformed header")
	}

	d.Offset = int64(d.ByteOrder.Uint32(p[4:8]))
	if err := d.parse(r, size); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) parse(r io.ReaderAt, size int64) error {
	// The first two bytes contain the number of entries (12 bytes each).
	p := make([]byte, 2)
	if err := readAt(r, size, p, d.Offset); err != nil {
		return err
	}
	numItems := int(d.ByteOrder.Uint16(p))
	if numItems == 0 {
		return FormatError("empty IFD")
	}

	// All IFD entries and the next IFD offset are read in one chunk.
	p = make([]byte, ifdLen*numItems+4)
	if err := readAt(r, size, p, d.Offset+2); err != nil {
		return err
	}

	for i := 0; i < ifdLen*numItems; i += ifdLen {
		t, err := d.parseEntry(r, size, p[i:i+ifdLen])
		if err != nil {
			return err
		}
		if _, ok := d.features[t.ID]; ok {
			return FormatError(fmt.Sprintf("duplicate tag %d", t.ID))
		}
		d.features[t.ID] = t
	}
	d.Next = d.ByteOrder.Uint32(p[ifdLen*numItems:])

	return nil
}

// parseEntry decodes the IFD entry in p, reading the out-of-line
// values when they do not fit in the 4 bytes of the entry.
func (d *Directory) parseEntry(r io.ReaderAt, size int64, p []byte) (Tag, error) {
	t := Tag{
		ID:       d.ByteOrder.Uint16(p[0:2]),
		DataType: DataType(d.ByteOrder.Uint16(p[2:4])),
		Count:    d.ByteOrder.Uint32(p[4:8]),
	}
	if t.DataType.Size() == 0 {
		return t, FormatError(fmt.Sprintf("tag %d has unknown data type %d", t.ID, t.DataType))
	}

	datalen := uint64(t.DataType.Size()) * uint64(t.Count)
	if datalen > uint64(size) {
		return t, FormatError(fmt.Sprintf("tag %d declares %d bytes of data", t.ID, datalen))
	}

	var raw []byte
	if datalen > 4 {
		// The IFD contains a pointer to the real value.
		raw = make([]byte, datalen)
		if err := readAt(r, size, raw, int64(d.ByteOrder.Uint32(p[8:12]))); err != nil {
			return t, err
		}
	} else {
		raw = p[8 : 8+datalen]
	}

	o := d.ByteOrder
	t.val = make([]uint64, t.Count)
	for i := range t.val {
		switch t.DataType {
		case DTByte, DTASCII, DTUndefined:
			t.val[i] = uint64(raw[i])
		case DTSByte:
			t.val[i] = uint64(int64(int8(raw[i])))
		case DTShort:
			t.val[i] = uint64(o.Uint16(raw[2*i:]))
		case DTSShort:
			t.val[i] = uint64(int64(int16(o.Uint16(raw[2*i:]))))
		case DTLong, DTFloat:
			t.val[i] = uint64(o.Uint32(raw[4*i:]))
		case DTSLong:
			t.val[i] = uint64(int64(int32(o.Uint32(raw[4*i:]))))
		case DTRational, DTSRational:
			t.val[i] = uint64(o.Uint32(raw[8*i:]))<<32 | uint64(o.Uint32(raw[8*i+4:]))
		case DTDouble:
			t.val[i] = o.Uint64(raw[8*i:])
		}
	}
	return t, nil
}

// Tag returns the entry with the given id.
func (d *Directory) Tag(id uint16) (Tag, bool) {
	t, ok := d.features[id]
	return t, ok
}

// Has reports whether the directory holds the given tag.
func (d *Directory) Has(id uint16) bool {
	_, ok := d.features[id]
	return ok
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return len(d.features)
}

// firstVal is a convenient accessor of Tag#FirstVal().
func (d *Directory) firstVal(tag uint16) uint {
	return d.features[tag].FirstVal()
}

func (d *Directory) String() string {
	ids := make([]int, 0, len(d.features))
	for id := range d.features {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	buf := bytes.NewBufferString("== TIFF ==\n")
	for _, id := range ids {
		buf.WriteString(fmt.Sprintf("%v\n", d.features[uint16(id)]))
	}
	buf.WriteString(fmt.Sprintf("ByteOrder: %v\n", d.ByteOrder))
	buf.WriteString(fmt.Sprintf("BPP: %d\n", d.firstVal(TagBitsPerSample)))
	buf.WriteString(fmt.Sprintf("Bounds: %dx%d\n", d.firstVal(TagImageWidth), d.firstVal(TagImageLength)))
	return buf.String()
}
