package vchar

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pchar"
	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/repl"
)

func (v *VChar) Repl() *repl.REPL {
	r := repl.NewRepl()
	r.AddCommand("open", v.openHandler(), "Opens a device and prints its fd. usage: open <minor> [nonblock]")
	r.AddCommand("close", v.closeHandler(), "Closes an fd. usage: close <fd>")
	r.AddCommand("w", v.writeHandler(), "Writes text to an fd in the background. usage: w <fd> <text>")
	r.AddCommand("r", v.readHandler(), "Reads up to n bytes from an fd in the background. usage: r <fd> <n>")
	r.AddCommand("clear", v.ioctlHandler(pchar.CmdClear), "Empties the device behind an fd. usage: clear <fd>")
	r.AddCommand("info", v.ioctlHandler(pchar.CmdInfo), "Prints capacity, used and free bytes. usage: info <fd>")
	r.AddCommand("resize", v.resizeHandler(), "Resizes the device behind an fd, keeping its data. usage: resize <fd> <capacity>")
	r.AddCommand("ls", v.lsHandler(), "Lists all devices. usage: ls")
	r.AddCommand("lf", v.lfHandler(), "Lists all open fds. usage: lf")
	r.AddCommand("jobs", v.jobsHandler(), "Lists running background reads and writes. usage: jobs")
	r.AddCommand("intr", v.intrHandler(), "Interrupts every suspended read and write. usage: intr")
	r.AddCommand("help", func(input string, config *repl.REPLConfig) error {
		_, err := io.WriteString(config.Writer, r.HelpString())
		return err
	}, "Prints this message. usage: help")
	r.AddCommand("q", func(string, *repl.REPLConfig) error { return repl.ErrExit }, "Quits. usage: q")
	r.Notify = v.FlushJobs
	return r
}

func parseFD(s string) (int, error) {
	fd, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid fd %q", s)
	}
	return fd, nil
}

func (v *VChar) openHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 2 && len(args) != 3 {
			return fmt.Errorf("usage: open <minor> [nonblock]")
		}
		minor, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		var flags pchar.Flag
		if len(args) == 3 {
			if args[2] != "nonblock" {
				return fmt.Errorf("unknown flag %q", args[2])
			}
			flags |= pchar.ONonblock
		}

		f, err := v.Registry.Open(minor, flags)
		if err != nil {
			return err
		}
		fd := v.Files.Insert(f)
		_, err = io.WriteString(config.Writer, fmt.Sprintf("fd %d -> my_char%d\n", fd, minor))
		return err
	}
}

func (v *VChar) closeHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 2 {
			return fmt.Errorf("usage: close <fd>")
		}
		fd, err := parseFD(args[1])
		if err != nil {
			return err
		}
		f, err := v.Files.Remove(fd)
		if err != nil {
			return err
		}
		return f.Close()
	}
}

func (v *VChar) writeHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.SplitN(input, " ", 3)
		if len(args) != 3 {
			return fmt.Errorf("usage: w <fd> <text>")
		}
		fd, err := parseFD(args[1])
		if err != nil {
			return err
		}
		f, err := v.Files.Get(fd)
		if err != nil {
			return err
		}

		data := []byte(args[2])
		id := v.spawn(input, func(ctx context.Context) (string, error) {
			n, err := f.Write(ctx, data)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("wrote %d bytes", n), nil
		})
		_, err = io.WriteString(config.Writer, fmt.Sprintf("[%d]\n", id))
		return err
	}
}

func (v *VChar) readHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 3 {
			return fmt.Errorf("usage: r <fd> <n>")
		}
		fd, err := parseFD(args[1])
		if err != nil {
			return err
		}
		size, err := strconv.Atoi(args[2])
		if err != nil || size < 0 {
			return fmt.Errorf("invalid byte count %q", args[2])
		}
		f, err := v.Files.Get(fd)
		if err != nil {
			return err
		}
		// No read returns more than the buffer holds.
		info, err := f.Ioctl(pchar.CmdInfo, 0)
		if err != nil {
			return err
		}
		if size > info.Capacity {
			size = info.Capacity
		}

		id := v.spawn(input, func(ctx context.Context) (string, error) {
			buf := make([]byte, size)
			n, err := f.Read(ctx, buf)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("read %d bytes: %q", n, buf[:n]), nil
		})
		_, err = io.WriteString(config.Writer, fmt.Sprintf("[%d]\n", id))
		return err
	}
}

func writeInfo(w io.Writer, info pchar.Info) error {
	_, err := io.WriteString(w, fmt.Sprintf("capacity=%d used=%d free=%d\n", info.Capacity, info.Used, info.Free))
	return err
}

func (v *VChar) ioctlHandler(cmd pchar.Command) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <fd>", args[0])
		}
		fd, err := parseFD(args[1])
		if err != nil {
			return err
		}
		f, err := v.Files.Get(fd)
		if err != nil {
			return err
		}
		info, err := f.Ioctl(cmd, 0)
		if err != nil {
			return err
		}
		return writeInfo(config.Writer, info)
	}
}

func (v *VChar) resizeHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 3 {
			return fmt.Errorf("usage: resize <fd> <capacity>")
		}
		fd, err := parseFD(args[1])
		if err != nil {
			return err
		}
		capacity, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		f, err := v.Files.Get(fd)
		if err != nil {
			return err
		}
		info, err := f.Ioctl(pchar.CmdResize, capacity)
		if err != nil {
			return err
		}
		return writeInfo(config.Writer, info)
	}
}

func (v *VChar) lsHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 1 {
			return fmt.Errorf("usage: ls")
		}

		_, err := io.WriteString(config.Writer, "Device\tCap\tUsed\tFree\tReaders\tWriters\n")
		if err != nil {
			return fmt.Errorf("lsHandler cannot write the header to stdout")
		}
		for _, row := range v.DeviceStrings() {
			_, err := io.WriteString(config.Writer, row)
			if err != nil {
				return fmt.Errorf("lsHandler cannot write devices to stdout")
			}
		}
		return nil
	}
}

func (v *VChar) lfHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 1 {
			return fmt.Errorf("usage: lf")
		}

		_, err := io.WriteString(config.Writer, "FD\tDevice\tMode\n")
		if err != nil {
			return fmt.Errorf("lfHandler cannot write the header to stdout")
		}
		for _, row := range v.Files.Strings() {
			_, err := io.WriteString(config.Writer, row)
			if err != nil {
				return fmt.Errorf("lfHandler cannot write fds to stdout")
			}
		}
		return nil
	}
}

func (v *VChar) jobsHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		for _, row := range v.Jobs() {
			if _, err := io.WriteString(config.Writer, row); err != nil {
				return err
			}
		}
		return nil
	}
}

func (v *VChar) intrHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		n := v.Interrupt()
		_, err := io.WriteString(config.Writer, fmt.Sprintf("interrupted %d job(s)\n", n))
		return err
	}
}
