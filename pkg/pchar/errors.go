package pchar

import (
	"fmt"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/circbuff"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var (
	ErrNotFound    = errors.New("no such device")
	ErrConfig      = errors.New("invalid device configuration")
	ErrCapacity    = circbuff.ErrCapacity
	ErrUnsupported = errors.New("unsupported control command")
	ErrInterrupted = errors.New("interrupted")
	ErrWouldBlock  = errors.New("operation would block")
	ErrClosed      = errors.New("file already closed")
)

// InterruptedError is returned when a suspended read or write is woken by
// cancellation instead of its condition. No bytes were transferred, so the
// call may be retried. It matches both ErrInterrupted and Cause.
type InterruptedError struct {
	Op    string
	Minor int
	Cause error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("%s my_char%d interrupted: %v", e.Op, e.Minor, e.Cause)
}

func (e *InterruptedError) Is(target error) bool {
	return target == ErrInterrupted
}

func (e *InterruptedError) Unwrap() error {
	return e.Cause
}

// Errno maps an error returned by this package onto the errno a character
// device would hand back to userspace. Unknown errors map to EIO.
func Errno(err error) unix.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInterrupted):
		return unix.EINTR
	case errors.Is(err, ErrNotFound):
		return unix.ENODEV
	case errors.Is(err, ErrConfig):
		return unix.EINVAL
	case errors.Is(err, ErrCapacity):
		return unix.ENOSPC
	case errors.Is(err, ErrUnsupported):
		return unix.ENOTTY
	case errors.Is(err, ErrWouldBlock):
		return unix.EAGAIN
	case errors.Is(err, ErrClosed):
		return unix.EBADF
	}
	return unix.EIO
}
