package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type FFmpegConfig struct {
	Binary      string
	InputFormat string
	Device      string
	FPS         int
}

// FFmpegSource opens the capture device through an ffmpeg child process
// that writes MJPEG frames to its stdout.
type FFmpegSource struct {
	cfg FFmpegConfig
	log *logrus.Logger
}

func NewFFmpegSource(cfg FFmpegConfig, log *logrus.Logger) *FFmpegSource {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 10
	}
	return &FFmpegSource{cfg: cfg, log: log}
}

func (s *FFmpegSource) args() []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if s.cfg.InputFormat != "" {
		args = append(args, "-f", s.cfg.InputFormat)
	}
	return append(args,
		"-framerate", strconv.Itoa(s.cfg.FPS),
		"-i", s.cfg.Device,
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "5",
		"-",
	)
}

// Open starts ffmpeg and waits for the first frame so a device that cannot
// be opened is reported here instead of on the first read.
func (s *FFmpegSource) Open(ctx context.Context) (Device, error) {
	cmd := exec.Command(s.cfg.Binary, s.args()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	dev := &ffmpegDevice{
		cmd:      cmd,
		stdout:   stdout,
		splitter: NewJPEGSplitter(stdout),
	}
	dev.alive.Store(true)

	type firstFrame struct {
		frame []byte
		err   error
	}
	ready := make(chan firstFrame, 1)
	go func() {
		frame, err := dev.splitter.Next()
		ready <- firstFrame{frame, err}
	}()

	select {
	case <-ctx.Done():
		_ = dev.Close()
		return nil, ctx.Err()
	case first := <-ready:
		if first.err != nil {
			_ = dev.Close()
			return nil, fmt.Errorf("open %s: %w", s.cfg.Device, first.err)
		}
		dev.pending = first.frame
	}

	s.log.WithFields(logrus.Fields{
		"device": s.cfg.Device,
		"format": s.cfg.InputFormat,
		"fps":    s.cfg.FPS,
	}).Info("Camera opened")

	return dev, nil
}

type ffmpegDevice struct {
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	splitter *JPEGSplitter
	pending  []byte
	alive    atomic.Bool
	once     sync.Once
}

func (d *ffmpegDevice) ReadFrame() ([]byte, error) {
	if !d.alive.Load() {
		return nil, ErrClosed
	}
	if d.pending != nil {
		frame := d.pending
		d.pending = nil
		return frame, nil
	}
	frame, err := d.splitter.Next()
	if err != nil {
		d.alive.Store(false)
		return nil, err
	}
	return frame, nil
}

func (d *ffmpegDevice) Alive() bool {
	return d.alive.Load()
}

func (d *ffmpegDevice) Close() error {
	var err error
	d.once.Do(func() {
		d.alive.Store(false)
		if d.cmd.Process != nil {
			_ = d.cmd.Process.Kill()
		}
		_ = d.stdout.Close()
		if waitErr := d.cmd.Wait(); waitErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(waitErr, &exitErr) {
				err = waitErr
			}
		}
	})
	return err
}
