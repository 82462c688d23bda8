package tiff

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/image/tiff/lzw"
)

type byteReader interface {
	io.Reader
	io.ByteReader
}

// decompress returns the decompressed content of the n bytes
// stored at offset in r.
func decompress(r io.ReaderAt, compression int, offset, n int64) (buf []byte, err error) {
	sr := io.NewSectionReader(r, offset, n)
	switch compression {
	case CompressionNone:
		buf = make([]byte, n)
		_, err = io.ReadFull(sr, buf)
	case CompressionLZW:
		rc := lzw.NewReader(sr, lzw.MSB, 8)
		buf, err = io.ReadAll(rc)
		rc.Close()
	case CompressionDeflate, CompressionDeflateOld:
		var rc io.ReadCloser
		if rc, err = zlib.NewReader(sr); err != nil {
			return nil, FormatError(fmt.Sprintf("deflate: %v", err))
		}
		buf, err = io.ReadAll(rc)
		rc.Close()
	case CompressionPackBits:
		buf, err = unpackBits(sr)
	default:
		return nil, UnsupportedError(fmt.Sprintf("compression value %d", compression))
	}
	if err != nil {
		if compression == CompressionNone {
			return nil, nativeError("read", err)
		}
		return nil, FormatError(fmt.Sprintf("corrupt compressed block at offset %d: %v", offset, err))
	}
	return buf, nil
}

// compress encodes an uncompressed strip.
func compress(compression int, p []byte) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return p, nil
	case CompressionDeflate, CompressionDeflateOld:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(p); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionPackBits:
		return packBits(p), nil
	default:
		return nil, UnsupportedError(fmt.Sprintf("compression value %d for writing", compression))
	}
}

// unpackBits decodes the PackBits-compressed data in src and returns the
// uncompressed data.
//
// The PackBits compression format is described in section 9 (p. 42)
// of the TIFF spec.
func unpackBits(r io.Reader) ([]byte, error) {
	var n int
	buf := make([]byte, 128)
	dst := make([]byte, 0, 1024)
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return dst, nil
			}
			return nil, err
		}
		code := int(int8(b))
		switch {
		case code >= 0:
			n, err = io.ReadFull(br, buf[:code+1])
			if err != nil {
				return nil, err
			}
			dst = append(dst, buf[:n]...)
		case code == -128:
			// No-op.
		default:
			if b, err = br.ReadByte(); err != nil {
				return nil, err
			}
			for j := 0; j < 1-code; j++ {
				buf[j] = b
			}
			dst = append(dst, buf[:1-code]...)
		}
	}
}

// packBits encodes p with PackBits, runs of at least 3 equal bytes
// becoming replicate runs.
func packBits(p []byte) []byte {
	dst := make([]byte, 0, len(p)+len(p)/128+1)
	for i := 0; i < len(p); {
		run := 1
		for i+run < len(p) && run < 128 && p[i+run] == p[i] {
			run++
		}
		if run >= 3 {
			dst = append(dst, byte(1-run), p[i])
			i += run
			continue
		}

		// Literal run up to the next replicate run.
		j := i
		for j < len(p) && j-i < 128 {
			if j+2 < len(p) && p[j] == p[j+1] && p[j] == p[j+2] {
				break
			}
			j++
		}
		dst = append(dst, byte(j-i-1))
		dst = append(dst, p[i:j]...)
		i = j
	}
	return dst
}

// toLittleEndian converts in place the samples of p, each size bytes long,
// from the given byte order.
func toLittleEndian(p []byte, order binary.ByteOrder, size int) {
	if size == 1 || order == binary.LittleEndian {
		return
	}
	for i := 0; i+size <= len(p); i += size {
		for a, b := i, i+size-1; a < b; a, b = a+1, b-1 {
			p[a], p[b] = p[b], p[a]
		}
	}
}

// undoHorizontalPredictor reverts the horizontal differencing of a block
// holding little-endian integer samples (see page 64-65 of the spec).
// Each row holds width pixels of spp samples of size bytes.
func undoHorizontalPredictor(p []byte, width, spp, size int) {
	stride := width * spp * size
	le := binary.LittleEndian
	for row := 0; row+stride <= len(p); row += stride {
		line := p[row : row+stride]
		for i := spp * size; i < stride; i += size {
			j := i - spp*size
			switch size {
			case 1:
				line[i] += line[j]
			case 2:
				le.PutUint16(line[i:], le.Uint16(line[i:])+le.Uint16(line[j:]))
			case 4:
				le.PutUint32(line[i:], le.Uint32(line[i:])+le.Uint32(line[j:]))
			case 8:
				le.PutUint64(line[i:], le.Uint64(line[i:])+le.Uint64(line[j:]))
			}
		}
	}
}
