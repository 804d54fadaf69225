package pchar

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Flag modifies how a File behaves.
type Flag int

const (
	// ONonblock makes reads on an empty device and writes on a full one
	// fail with ErrWouldBlock instead of suspending.
	ONonblock Flag = 1 << iota
)

// File is an open handle bound to one device for its whole lifetime. It
// holds no buffered data of its own.
type File struct {
	dev    *Device
	flags  Flag
	closed atomic.Bool
}

// Open binds a new File to the device with the given minor number.
func (r *Registry) Open(minor int, flags Flag) (*File, error) {
	d, err := r.Device(minor)
	if err != nil {
		return nil, err
	}
	logger.Debug("open", "minor", minor, "flags", flags)
	return &File{dev: d, flags: flags}, nil
}

func (f *File) Minor() int {
	return f.dev.minor
}

func (f *File) Flags() Flag {
	return f.flags
}

func (f *File) check() error {
	if f.closed.Load() {
		return errors.Wrapf(ErrClosed, "my_char%d", f.dev.minor)
	}
	return nil
}

// Read reads up to len(p) bytes from the bound device, suspending while
// it is empty unless the File is non-blocking.
func (f *File) Read(ctx context.Context, p []byte) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	return f.dev.read(ctx, p, f.flags&ONonblock == 0)
}

// Write writes as much of p as fits into the bound device, suspending
// while it is full unless the File is non-blocking.
func (f *File) Write(ctx context.Context, p []byte) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	return f.dev.write(ctx, p, f.flags&ONonblock == 0)
}

// Ioctl runs a control command against the bound device.
func (f *File) Ioctl(cmd Command, arg int) (Info, error) {
	if err := f.check(); err != nil {
		return Info{}, err
	}
	return f.dev.Ioctl(cmd, arg)
}

// Close releases the handle. Nothing is flushed; the device keeps its data.
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return errors.Wrapf(ErrClosed, "my_char%d", f.dev.minor)
	}
	logger.Debug("close", "minor", f.dev.minor)
	return nil
}
