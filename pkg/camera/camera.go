// Package camera owns the single capture device of the service. The device
// is opened lazily and reopened after it dies, so callers only ever see
// ErrUnavailable and never a stale handle.
package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

var (
	ErrUnavailable = errors.New("camera not available")
	ErrClosed      = errors.New("camera closed")
)

// Device is an opened capture device yielding JPEG encoded frames.
type Device interface {
	ReadFrame() ([]byte, error)
	Alive() bool
	Close() error
}

type Source interface {
	Open(ctx context.Context) (Device, error)
}

type Manager struct {
	source Source
	log    *logrus.Logger

	// sem serialises Open and ReadFrame. It is acquired with the caller's
	// context, so a wedged device never blocks a request past its deadline.
	sem *semaphore.Weighted

	mu     sync.Mutex
	device Device
	closed bool
}

func NewManager(source Source, log *logrus.Logger) *Manager {
	return &Manager{source: source, log: log, sem: semaphore.NewWeighted(1)}
}

type frameResult struct {
	frame []byte
	err   error
}

// Acquire returns the open device, opening a new one when there is none or
// the previous one died.
func (m *Manager) Acquire(ctx context.Context) (Device, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer m.sem.Release(1)
	return m.acquireHeld(ctx)
}

// acquireHeld expects sem to be held.
func (m *Manager) acquireHeld(ctx context.Context) (Device, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.device != nil && m.device.Alive() {
		dev := m.device
		m.mu.Unlock()
		return dev, nil
	}
	if m.device != nil {
		_ = m.device.Close()
		m.device = nil
	}
	m.mu.Unlock()

	dev, err := m.source.Open(ctx)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Could not open camera")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		_ = dev.Close()
		return nil, ErrClosed
	}
	m.device = dev
	return dev, nil
}

// drop closes dev if it is still the current device.
func (m *Manager) drop(dev Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == dev {
		_ = dev.Close()
		m.device = nil
	}
}

// Available reports whether a device can be acquired right now.
func (m *Manager) Available(ctx context.Context) bool {
	_, err := m.Acquire(ctx)
	return err == nil
}

// Read returns one frame. A failed read drops the device so the next call
// reopens it. When ctx ends first the device is dropped as well, which
// unblocks the pending read.
func (m *Manager) Read(ctx context.Context) ([]byte, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	dev, err := m.acquireHeld(ctx)
	if err != nil {
		m.sem.Release(1)
		return nil, err
	}

	done := make(chan frameResult, 1)
	go func() {
		defer m.sem.Release(1)
		frame, err := dev.ReadFrame()
		if err != nil {
			m.drop(dev)
		}
		done <- frameResult{frame: frame, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			m.log.WithFields(logrus.Fields{
				"error": res.err.Error(),
			}).Warn("Camera read failed, releasing device")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.err)
		}
		return res.frame, nil
	case <-ctx.Done():
		m.log.WithFields(logrus.Fields{
			"error": ctx.Err().Error(),
		}).Warn("Camera read timed out, releasing device")
		m.drop(dev)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.device == nil {
		return nil
	}
	err := m.device.Close()
	m.device = nil
	return err
}
