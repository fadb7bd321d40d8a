package camera

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}

	ErrFrameTooLarge = errors.New("camera: frame exceeds size limit")
)

const defaultMaxFrameSize = 8 * 1024 * 1024

// JPEGSplitter cuts a concatenated MJPEG byte stream, as written by
// ffmpeg's image2pipe muxer, into individual JPEG images.
type JPEGSplitter struct {
	r       *bufio.Reader
	maxSize int
}

func NewJPEGSplitter(r io.Reader) *JPEGSplitter {
	return &JPEGSplitter{
		r:       bufio.NewReaderSize(r, 64*1024),
		maxSize: defaultMaxFrameSize,
	}
}

// Next returns the next complete JPEG. Bytes before a start-of-image
// marker are skipped. io.EOF is returned once the stream ends between
// frames, io.ErrUnexpectedEOF when it ends inside one.
func (s *JPEGSplitter) Next() ([]byte, error) {
	if err := s.seekSOI(); err != nil {
		return nil, err
	}

	frame := bytes.NewBuffer(make([]byte, 0, 64*1024))
	frame.Write(jpegSOI)

	var prev byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		frame.WriteByte(b)
		if prev == jpegEOI[0] && b == jpegEOI[1] {
			return frame.Bytes(), nil
		}
		if frame.Len() > s.maxSize {
			return nil, ErrFrameTooLarge
		}
		prev = b
	}
}

func (s *JPEGSplitter) seekSOI() error {
	var prev byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if prev == jpegSOI[0] && b == jpegSOI[1] {
			return nil
		}
		prev = b
	}
}
