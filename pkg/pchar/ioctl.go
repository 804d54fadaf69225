package pchar

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
)

// Command is a device control code laid out like a Linux ioctl number:
// direction in bits 30-31, argument size in bits 16-29, type in bits 8-15
// and sequence number in bits 0-7.
type Command uint32

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocType = 'p'
)

func ioc(dir, nr, size uintptr) Command {
	return Command(dir<<30 | size<<16 | iocType<<8 | nr)
}

// infoT mirrors the {size, len, avail} record copied back to callers.
type infoT struct {
	size, len, avail uint32
}

var (
	CmdClear  = ioc(iocNone, 1, 0)
	CmdInfo   = ioc(iocRead, 2, unsafe.Sizeof(infoT{}))
	CmdResize = ioc(iocRead|iocWrite, 3, unsafe.Sizeof(infoT{}))
)

var commandString = map[Command]string{
	CmdClear:  "FIFO_CLEAR",
	CmdInfo:   "FIFO_INFO",
	CmdResize: "FIFO_RESIZE",
}

func (c Command) String() string {
	if s, ok := commandString[c]; ok {
		return s
	}
	return fmt.Sprintf("Command(%#x)", uint32(c))
}

// Ioctl dispatches a control command to the device. CmdClear and CmdInfo
// ignore arg; CmdResize takes the new capacity in arg. The resulting state
// is returned for every known command.
func (d *Device) Ioctl(cmd Command, arg int) (Info, error) {
	logger.Debug("ioctl", "minor", d.minor, "cmd", cmd, "arg", arg)
	switch cmd {
	case CmdClear:
		return d.Clear()
	case CmdInfo:
		return d.Stats()
	case CmdResize:
		info, err := d.Resize(arg)
		if err != nil {
			logger.Warn("fifo resize rejected", "minor", d.minor, "arg", arg, "err", err)
		}
		return info, err
	default:
		logger.Warn("unsupported ioctl", "minor", d.minor, "cmd", cmd)
		return Info{}, errors.Wrapf(ErrUnsupported, "%v", cmd)
	}
}
