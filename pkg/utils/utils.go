package utils

import (
	"bytes"
	"crypto/rand"
	"errors"
	"image"
	"image/jpeg"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrEmptyImage = errors.New("empty image data")

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	DecodeJPEG(data []byte) (image.Image, error)
	EncodeJPEG(img image.Image) ([]byte, error)
}

type utils struct {
	jpegQuality int
}

func New() IUtils {
	return &utils{
		jpegQuality: 80,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) DecodeJPEG(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return img, nil
}

func (u *utils) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: u.jpegQuality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
