package tiff

// Resources:
// https://github.com/golang/image/tree/master/tiff
// https://www.fileformat.info/format/tiff/egff.htm
// http://www.awaresystems.be/imaging/tiff.html
// https://www.awaresystems.be/imaging/tiff/specification/TIFF6.pdf
// https://www.awaresystems.be/imaging/tiff/tifftags/sampleformat.html

import (
	"image"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/mdouchement/rawtiff/pixel"
	"golang.org/x/exp/mmap"
)

// Mode is the access mode of a Session.
type Mode int

// Session modes.
const (
	ModeRead Mode = iota
	ModeWrite
)

// File is the native handle read by a Session.
// A *mmap.ReaderAt is a File.
type File interface {
	io.ReaderAt
	io.Closer
	Len() int
}

// Session is an open TIFF file. It owns its native handle and is not safe
// for concurrent use; open one session per goroutine instead.
type Session struct {
	mode    Mode
	rf      File
	wf      io.WriteCloser
	dec     *decoder
	codec   codec
	written *pixel.Buffer
	closed  bool
}

// Open opens the file at path. In ModeRead the directory is parsed and the
// geometry resolved before returning; in ModeWrite the file is created or
// truncated.
func Open(path string, mode Mode) (*Session, error) {
	switch mode {
	case ModeRead:
		f, err := mmap.Open(path)
		if err != nil {
			return nil, nativeError("open", err)
		}
		s, err := NewSession(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return s, nil
	case ModeWrite:
		f, err := os.Create(path)
		if err != nil {
			return nil, nativeError("open", err)
		}
		return NewWriteSession(f), nil
	default:
		return nil, InternalError("unknown session mode")
	}
}

// NewSession returns a read session on f. The session owns f once created;
// on error f is left open.
func NewSession(f File) (*Session, error) {
	d, err := newDecoder(f, int64(f.Len()))
	if err != nil {
		return nil, err
	}
	return &Session{
		mode:  ModeRead,
		rf:    f,
		dec:   d,
		codec: newCodec(d),
	}, nil
}

// NewWriteSession returns a write session on w. The session owns w.
func NewWriteSession(w io.WriteCloser) *Session {
	return &Session{
		mode: ModeWrite,
		wf:   w,
	}
}

// Close releases the native handle. Closing a session twice is a
// programming error reported as an InternalError; the handle is released once.
func (s *Session) Close() error {
	if s.closed {
		return InternalError("session already closed")
	}
	s.closed = true

	if s.mode == ModeRead {
		return nativeError("close", s.rf.Close())
	}
	return nativeError("close", s.wf.Close())
}

// With opens the file at path, calls fn with the session and closes it,
// whatever fn returns.
func With(path string, mode Mode, fn func(*Session) error) error {
	s, err := Open(path, mode)
	if err != nil {
		return err
	}
	return run(s, fn)
}

// WithFile is With for an already open handle. f is closed on every path,
// including a failing directory parsing.
func WithFile(f File, fn func(*Session) error) error {
	s, err := NewSession(f)
	if err != nil {
		if cerr := f.Close(); cerr != nil {
			return multierror.Append(err, nativeError("close", cerr))
		}
		return err
	}
	return run(s, fn)
}

func run(s *Session, fn func(*Session) error) (err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()
	return fn(s)
}

// Mode returns the access mode of the session.
func (s *Session) Mode() Mode {
	return s.mode
}

// Directory returns the parsed tag directory, nil for a write session.
func (s *Session) Directory() *Directory {
	if s.dec == nil {
		return nil
	}
	return s.dec.Directory
}

// Geometry returns the resolved geometry of the image.
// It is the zero Geometry for a write session.
func (s *Session) Geometry() Geometry {
	if s.dec == nil {
		return Geometry{}
	}
	return s.dec.geometry
}

// Size returns the dimensions of the image. A write session reports the
// dimensions of the written image, if any.
func (s *Session) Size() (height, width int) {
	switch {
	case s.dec != nil:
		return s.dec.geometry.Height, s.dec.geometry.Width
	case s.written != nil:
		return s.written.Rows, s.written.Cols
	}
	return 0, 0
}

// ElementType returns the scalar type of the buffers returned by Read.
// Multi-sample scanline images are expanded to RGBA and read as pixel.Uint8.
func (s *Session) ElementType() pixel.Type {
	switch {
	case s.codec != nil:
		return s.codec.elementType()
	case s.written != nil:
		return s.written.Type
	}
	return pixel.Invalid
}

// Read decodes the whole image.
func (s *Session) Read() (*pixel.Buffer, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	g := s.dec.geometry
	return s.codec.read(image.Rect(0, 0, g.Width, g.Height))
}

// ReadWindow decodes the region r of the image, X being the column axis.
// A BoundsError is returned, before any read, when r is empty or is not
// contained in the image.
func (s *Session) ReadWindow(r image.Rectangle) (*pixel.Buffer, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	g := s.dec.geometry
	if err := checkWindow(r, g.Width, g.Height); err != nil {
		return nil, err
	}
	return s.codec.read(r)
}

func (s *Session) readable() error {
	if s.closed {
		return InternalError("read on a closed session")
	}
	if s.mode != ModeRead {
		return InternalError("read on a write session")
	}
	return nil
}

// Write encodes m as a strip organized image. A write session holds one image.
func (s *Session) Write(m *pixel.Buffer, opts *Options) error {
	switch {
	case s.closed:
		return InternalError("write on a closed session")
	case s.mode != ModeWrite:
		return InternalError("write on a read session")
	case s.written != nil:
		return InternalError("image already written")
	}
	if err := Encode(s.wf, m, opts); err != nil {
		return err
	}
	s.written = m
	return nil
}

// Decode decodes the whole image held by the size bytes of r.
func Decode(r io.ReaderAt, size int64) (*pixel.Buffer, error) {
	d, err := newDecoder(r, size)
	if err != nil {
		return nil, err
	}
	g := d.geometry
	return newCodec(d).read(image.Rect(0, 0, g.Width, g.Height))
}

// ReadFile decodes the whole image of the file at path.
func ReadFile(path string) (m *pixel.Buffer, err error) {
	err = With(path, ModeRead, func(s *Session) error {
		m, err = s.Read()
		return err
	})
	return m, err
}

// ReadFileWindow decodes the region r of the image of the file at path.
func ReadFileWindow(path string, r image.Rectangle) (m *pixel.Buffer, err error) {
	err = With(path, ModeRead, func(s *Session) error {
		m, err = s.ReadWindow(r)
		return err
	})
	return m, err
}

// WriteFile writes m to the file at path.
func WriteFile(path string, m *pixel.Buffer, opts *Options) error {
	return With(path, ModeWrite, func(s *Session) error {
		return s.Write(m, opts)
	})
}
