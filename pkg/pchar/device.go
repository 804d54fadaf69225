package pchar

import (
	"context"
	"sync"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/circbuff"
	"github.com/pkg/errors"
)

// Device is one independent buffered endpoint. Every access to buf, both
// wait conditions and the waiter counters happens under mu.
//
// Waiting follows the same pattern as a send buffer signalling free
// space: a waiter grabs the current condition channel, drops the lock and
// blocks on it; a state change closes the channel and installs a fresh
// one, which wakes every waiter at once so each re-checks its condition.
type Device struct {
	minor int
	limit int // 0 means unlimited

	mu       sync.Mutex
	buf      *circbuff.CircBuff
	notEmpty chan struct{} // closed when bytes arrive
	notFull  chan struct{} // closed when space frees up
	done     chan struct{} // closed on teardown
	released bool

	readers int // suspended readers
	writers int // suspended writers
}

// Info reports the state of a device buffer.
type Info struct {
	Capacity int
	Used     int
	Free     int
}

func newDevice(minor, capacity, limit int) *Device {
	return &Device{
		minor:    minor,
		limit:    limit,
		buf:      circbuff.NewCircBuff(capacity),
		notEmpty: make(chan struct{}),
		notFull:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (d *Device) Minor() int {
	return d.minor
}

// broadcast wakes everything waiting on *cond.
// The device should be locked on entry.
func broadcast(cond *chan struct{}) {
	close(*cond)
	*cond = make(chan struct{})
}

// wait releases the lock, sleeps until *cond fires, ctx is done, or the
// device is torn down, then reacquires the lock.
// The device should be locked on entry.
func (d *Device) wait(ctx context.Context, op string, cond *chan struct{}) error {
	c := *cond
	d.mu.Unlock()
	defer d.mu.Lock()

	select {
	case <-c:
		return nil
	case <-d.done:
		return &InterruptedError{Op: op, Minor: d.minor, Cause: ErrClosed}
	case <-ctx.Done():
		return &InterruptedError{Op: op, Minor: d.minor, Cause: ctx.Err()}
	}
}

// Read blocks until the buffer holds data, then copies up to len(p) bytes
// into p. Short reads are normal. A zero-length p returns immediately.
func (d *Device) Read(ctx context.Context, p []byte) (int, error) {
	return d.read(ctx, p, true)
}

// Write blocks until the buffer has space, then stores as much of p as
// fits and returns the count. Short writes are normal.
func (d *Device) Write(ctx context.Context, p []byte) (int, error) {
	return d.write(ctx, p, true)
}

func (d *Device) read(ctx context.Context, p []byte, block bool) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		if d.released {
			return 0, errors.Wrapf(ErrClosed, "my_char%d", d.minor)
		}
		if !d.buf.IsEmpty() {
			break
		}
		if !block {
			return 0, errors.Wrapf(ErrWouldBlock, "read my_char%d", d.minor)
		}
		logger.Debug("reader waiting", "minor", d.minor)
		d.readers++
		err := d.wait(ctx, "read", &d.notEmpty)
		d.readers--
		if err != nil {
			logger.Debug("reader woken by interrupt", "minor", d.minor, "err", err)
			return 0, err
		}
	}

	n := d.buf.Read(p)
	if n > 0 {
		broadcast(&d.notFull)
	}
	logger.Debug("bytes read", "minor", d.minor, "n", n)
	return n, nil
}

func (d *Device) write(ctx context.Context, p []byte, block bool) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		if d.released {
			return 0, errors.Wrapf(ErrClosed, "my_char%d", d.minor)
		}
		if !d.buf.IsFull() {
			break
		}
		if !block {
			return 0, errors.Wrapf(ErrWouldBlock, "write my_char%d", d.minor)
		}
		logger.Debug("writer waiting", "minor", d.minor)
		d.writers++
		err := d.wait(ctx, "write", &d.notFull)
		d.writers--
		if err != nil {
			logger.Debug("writer woken by interrupt", "minor", d.minor, "err", err)
			return 0, err
		}
	}

	n := d.buf.Write(p)
	if n > 0 {
		broadcast(&d.notEmpty)
	}
	logger.Debug("bytes written", "minor", d.minor, "n", n)
	return n, nil
}

// Clear discards all buffered bytes and wakes suspended writers. The
// returned Info is taken under the same lock, before any woken writer
// gets to run.
func (d *Device) Clear() (Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return Info{}, errors.Wrapf(ErrClosed, "my_char%d", d.minor)
	}
	d.buf.Clear()
	broadcast(&d.notFull)
	logger.Info("fifo cleared", "minor", d.minor)
	return d.info(), nil
}

// Stats returns the capacity, used and free byte counts.
func (d *Device) Stats() (Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return Info{}, errors.Wrapf(ErrClosed, "my_char%d", d.minor)
	}
	return d.info(), nil
}

// The device should be locked on entry.
func (d *Device) info() Info {
	return Info{
		Capacity: d.buf.Capacity(),
		Used:     d.buf.Len(),
		Free:     d.buf.Free(),
	}
}

// Resize replaces the buffer with one of newCapacity holding the same
// bytes in the same order. If they would not fit, or newCapacity is over
// the configured limit, ErrCapacity is returned and nothing changes.
// Both wait conditions are re-evaluated on success.
func (d *Device) Resize(newCapacity int) (Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return Info{}, errors.Wrapf(ErrClosed, "my_char%d", d.minor)
	}
	if d.limit > 0 && newCapacity > d.limit {
		return d.info(), errors.Wrapf(ErrCapacity, "my_char%d: %d over limit %d", d.minor, newCapacity, d.limit)
	}
	if newCapacity <= 0 || d.buf.Len() > newCapacity {
		return d.info(), errors.Wrapf(ErrCapacity, "my_char%d: resize %d with %d bytes queued", d.minor, newCapacity, d.buf.Len())
	}

	old := d.buf.Capacity()
	// Replace allocates before it touches the old storage, so a failure
	// here leaves the queued bytes where they were.
	if err := d.buf.Replace(newCapacity, d.buf.Bytes()); err != nil {
		return d.info(), errors.Wrapf(err, "my_char%d", d.minor)
	}
	broadcast(&d.notFull)
	broadcast(&d.notEmpty)

	info := d.info()
	logger.Info("fifo resized", "minor", d.minor, "from", old, "to", info.Capacity, "used", info.Used)
	return info, nil
}

// Waiters returns how many readers and writers are currently suspended.
func (d *Device) Waiters() (readers, writers int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readers, d.writers
}

// release wakes every waiter with an interrupt and drops the storage.
func (d *Device) release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return
	}
	d.released = true
	close(d.done)
	d.buf = nil
}
