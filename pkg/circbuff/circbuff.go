package circbuff

import (
	"github.com/pkg/errors"
)

// MaxCapacity is the largest storage a CircBuff will allocate.
const MaxCapacity = 1 << 30

// ErrCapacity is returned by Replace when the preserved bytes do not fit
// or the requested capacity is out of range.
var ErrCapacity = errors.New("circbuff: preserved bytes exceed new capacity")

// ------|================|--------------------|
//     head              tail               capacity
// head and tail are always in [0, capacity). count disambiguates
// head == tail (empty when 0, full when capacity).

// CircBuff is a fixed-capacity FIFO byte ring. It does no locking; the
// owner serializes access.
type CircBuff struct {
	buff     []byte
	capacity int
	head     int
	tail     int
	count    int
}

// NewCircBuff allocates a buffer of capacity bytes. The caller keeps
// capacity within (0, MaxCapacity]; see CheckCapacity.
func NewCircBuff(capacity int) *CircBuff {
	return &CircBuff{
		buff:     make([]byte, capacity),
		capacity: capacity,
	}
}

// Write copies min(len(buf), Free()) bytes at tail and returns how many
// were stored. A full buffer stores nothing and returns 0.
func (cb *CircBuff) Write(buf []byte) int {
	n := min(len(buf), cb.capacity-cb.count)
	if n == 0 {
		return 0
	}

	tailSpace := cb.capacity - cb.tail
	if tailSpace >= n { // fits before the end of storage
		copy(cb.buff[cb.tail:], buf[:n])
	} else { // wrap around
		copy(cb.buff[cb.tail:], buf[:tailSpace])
		copy(cb.buff[0:], buf[tailSpace:n])
	}

	cb.tail = (cb.tail + n) % cb.capacity
	cb.count += n
	return n
}

// Read copies min(len(buf), Len()) bytes from head into buf. An empty
// buffer reads 0 bytes.
func (cb *CircBuff) Read(buf []byte) int {
	n := cb.peek(buf)
	cb.head = (cb.head + n) % cb.capacity
	cb.count -= n
	return n
}

func (cb *CircBuff) peek(buf []byte) int {
	n := min(len(buf), cb.count)
	if n == 0 {
		return 0
	}

	end := cb.head + n
	if end <= cb.capacity {
		copy(buf, cb.buff[cb.head:end])
	} else {
		copy(buf, cb.buff[cb.head:cb.capacity])
		copy(buf[cb.capacity-cb.head:n], cb.buff[:end-cb.capacity])
	}
	return n
}

// Clear empties the buffer and keeps its capacity.
func (cb *CircBuff) Clear() {
	cb.head = 0
	cb.tail = 0
	cb.count = 0
}

// Len returns the number of unread bytes.
func (cb *CircBuff) Len() int {
	return cb.count
}

// Free returns the available write space.
func (cb *CircBuff) Free() int {
	return cb.capacity - cb.count
}

func (cb *CircBuff) Capacity() int {
	return cb.capacity
}

func (cb *CircBuff) IsEmpty() bool {
	return cb.count == 0
}

func (cb *CircBuff) IsFull() bool {
	return cb.count == cb.capacity
}

// Bytes returns a copy of the unread bytes in FIFO order without
// consuming them.
func (cb *CircBuff) Bytes() []byte {
	if cb.count == 0 {
		return nil
	}
	buf := make([]byte, cb.count)
	cb.peek(buf)
	return buf
}

// Drain reads out every unread byte in FIFO order and leaves the buffer
// empty.
func (cb *CircBuff) Drain() []byte {
	buf := cb.Bytes()
	cb.Clear()
	return buf
}

// CheckCapacity reports whether capacity is a size NewCircBuff and
// Replace will allocate.
func CheckCapacity(capacity int) error {
	if capacity <= 0 {
		return errors.Wrapf(ErrCapacity, "capacity %d is not positive", capacity)
	}
	if capacity > MaxCapacity {
		return errors.Wrapf(ErrCapacity, "capacity %d over %d", capacity, MaxCapacity)
	}
	return nil
}

// Replace swaps in fresh storage of newCapacity holding preserved, with
// head at 0. The new storage is filled before any state changes, so on
// ErrCapacity the buffer is left untouched.
func (cb *CircBuff) Replace(newCapacity int, preserved []byte) error {
	if err := CheckCapacity(newCapacity); err != nil {
		return err
	}
	if len(preserved) > newCapacity {
		return errors.Wrapf(ErrCapacity, "%d bytes into %d", len(preserved), newCapacity)
	}

	buff := make([]byte, newCapacity)
	n := copy(buff, preserved)

	cb.buff = buff
	cb.capacity = newCapacity
	cb.head = 0
	cb.tail = n % newCapacity
	cb.count = n
	return nil
}
