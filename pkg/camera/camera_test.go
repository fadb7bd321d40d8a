package camera

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	frames [][]byte
	alive  bool
	closed bool
}

func (d *fakeDevice) ReadFrame() ([]byte, error) {
	if len(d.frames) == 0 {
		d.alive = false
		return nil, io.EOF
	}
	f := d.frames[0]
	d.frames = d.frames[1:]
	return f, nil
}

func (d *fakeDevice) Alive() bool { return d.alive }

func (d *fakeDevice) Close() error {
	d.closed = true
	d.alive = false
	return nil
}

type fakeSource struct {
	opens   int
	failFor int
	devices []*fakeDevice
}

func (s *fakeSource) Open(context.Context) (Device, error) {
	s.opens++
	if s.opens <= s.failFor {
		return nil, errors.New("device busy")
	}
	dev := &fakeDevice{frames: [][]byte{[]byte("f1"), []byte("f2")}, alive: true}
	s.devices = append(s.devices, dev)
	return dev, nil
}

func newTestManager(src Source) *Manager {
	l, _ := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return NewManager(src, l)
}

func TestManagerOpensLazilyAndReuses(t *testing.T) {
	src := &fakeSource{}
	m := newTestManager(src)

	assert.Equal(t, 0, src.opens)

	frame, err := m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("f1"), frame)

	frame, err = m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("f2"), frame)
	assert.Equal(t, 1, src.opens)
}

func TestManagerReopensAfterDeviceDies(t *testing.T) {
	src := &fakeSource{}
	m := newTestManager(src)
	ctx := context.Background()

	_, _ = m.Read(ctx)
	_, _ = m.Read(ctx)

	_, err := m.Read(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, src.devices[0].closed)

	frame, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("f1"), frame)
	assert.Equal(t, 2, src.opens)
}

func TestManagerUnavailableThenRecovers(t *testing.T) {
	src := &fakeSource{failFor: 1}
	m := newTestManager(src)
	ctx := context.Background()

	assert.False(t, m.Available(ctx))
	assert.True(t, m.Available(ctx))
	assert.Equal(t, 2, src.opens)
}

func TestManagerClose(t *testing.T) {
	src := &fakeSource{}
	m := newTestManager(src)
	ctx := context.Background()

	require.True(t, m.Available(ctx))
	require.NoError(t, m.Close())
	assert.True(t, src.devices[0].closed)

	_, err := m.Acquire(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

// blockingDevice never yields a frame until it is closed.
type blockingDevice struct {
	release chan struct{}
	once    sync.Once
}

func (d *blockingDevice) ReadFrame() ([]byte, error) {
	<-d.release
	return nil, io.ErrClosedPipe
}

func (d *blockingDevice) Alive() bool { return true }

func (d *blockingDevice) Close() error {
	d.once.Do(func() { close(d.release) })
	return nil
}

type blockingSource struct {
	mu      sync.Mutex
	opens   int
	devices []*blockingDevice
}

func (s *blockingSource) Open(context.Context) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	dev := &blockingDevice{release: make(chan struct{})}
	s.devices = append(s.devices, dev)
	return dev, nil
}

func TestManagerReadHonoursDeadline(t *testing.T) {
	src := &blockingSource{}
	m := newTestManager(src)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Read(ctx)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel2()
	_, err = m.Read(ctx2)
	assert.ErrorIs(t, err, ErrUnavailable)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, 2, src.opens)
}

func TestManagerAcquireWaitsWithinDeadline(t *testing.T) {
	m := newTestManager(&fakeSource{})
	require.NoError(t, m.sem.Acquire(context.Background(), 1))
	defer m.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.False(t, m.Available(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestJPEGSplitter(t *testing.T) {
	frameA := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	frameB := []byte{0xFF, 0xD8, 0xFF, 0x00, 0x03, 0xFF, 0xD9}

	stream := bytes.Join([][]byte{{0x00, 0x11}, frameA, frameB}, nil)
	s := NewJPEGSplitter(bytes.NewReader(stream))

	got, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, frameA, got)

	got, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, frameB, got)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestJPEGSplitterTruncated(t *testing.T) {
	s := NewJPEGSplitter(bytes.NewReader([]byte{0xFF, 0xD8, 0x01, 0x02}))

	_, err := s.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestJPEGSplitterSizeLimit(t *testing.T) {
	s := NewJPEGSplitter(bytes.NewReader(append([]byte{0xFF, 0xD8}, make([]byte, 64)...)))
	s.maxSize = 16

	_, err := s.Next()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFFmpegArgs(t *testing.T) {
	l, _ := test.NewNullLogger()
	src := NewFFmpegSource(FFmpegConfig{InputFormat: "v4l2", Device: "/dev/video0"}, l)

	args := src.args()

	assert.Equal(t, "ffmpeg", src.cfg.Binary)
	assert.Contains(t, args, "image2pipe")
	assert.Subset(t, args, []string{"-f", "v4l2", "-i", "/dev/video0", "-framerate", "10"})
	assert.Equal(t, "-", args[len(args)-1])
}
