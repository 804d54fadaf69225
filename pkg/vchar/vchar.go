package vchar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/fdtable"
	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pchar"
	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pcharconfig"
	"github.com/eapache/queue"
	"golang.org/x/sys/unix"
)

var logger = slog.Default()

func SetLogger(l *slog.Logger) {
	logger = l
}

// VChar serves a set of character devices to an interactive user. Reads
// and writes run as background jobs so a blocked call does not hold up
// the prompt; finished jobs are reported before the next prompt.
type VChar struct {
	Registry *pchar.Registry
	Files    *fdtable.Table

	jobsMu   sync.Mutex
	nextJob  int
	running  map[int]string // job id -> command line
	finished *queue.Queue   // reports not yet shown
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(config *pcharconfig.Config) (*VChar, error) {
	reg, err := config.NewRegistry()
	if err != nil {
		return nil, err
	}
	v := &VChar{
		Registry: reg,
		Files:    fdtable.New(),
		running:  make(map[int]string),
		finished: queue.New(),
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())
	return v, nil
}

// spawn runs fn in the background as a numbered job.
func (v *VChar) spawn(desc string, fn func(ctx context.Context) (string, error)) int {
	v.jobsMu.Lock()
	v.nextJob++
	id := v.nextJob
	v.running[id] = desc
	ctx := v.ctx
	v.wg.Add(1)
	v.jobsMu.Unlock()

	logger.Debug("job started", "id", id, "cmd", desc)
	go func() {
		defer v.wg.Done()
		msg, err := fn(ctx)

		var report string
		if err != nil {
			report = fmt.Sprintf("[%d] Exit %s\t%s: %v\n", id, unix.ErrnoName(pchar.Errno(err)), desc, err)
		} else {
			report = fmt.Sprintf("[%d] Done\t%s: %s\n", id, desc, msg)
		}

		v.jobsMu.Lock()
		delete(v.running, id)
		v.finished.Add(report)
		v.jobsMu.Unlock()
		logger.Debug("job finished", "id", id, "err", err)
	}()
	return id
}

// Interrupt wakes every job suspended on a device with EINTR and returns
// how many jobs were running. Jobs started afterwards are unaffected.
func (v *VChar) Interrupt() int {
	v.jobsMu.Lock()
	defer v.jobsMu.Unlock()

	v.cancel()
	v.ctx, v.cancel = context.WithCancel(context.Background())
	return len(v.running)
}

// Jobs returns the running jobs, one line each, ordered by id.
func (v *VChar) Jobs() []string {
	v.jobsMu.Lock()
	defer v.jobsMu.Unlock()

	ids := make([]int, 0, len(v.running))
	for id := range v.running {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = fmt.Sprintf("[%d] Running\t%s\n", id, v.running[id])
	}
	return res
}

// FlushJobs writes and forgets the reports of finished jobs.
func (v *VChar) FlushJobs(w io.Writer) {
	v.jobsMu.Lock()
	defer v.jobsMu.Unlock()

	for v.finished.Length() > 0 {
		io.WriteString(w, v.finished.Remove().(string))
	}
}

// Wait blocks until every background job has finished.
func (v *VChar) Wait() {
	v.wg.Wait()
}

// Close closes all open files and tears the devices down. Suspended jobs
// are woken with EINTR.
func (v *VChar) Close() error {
	v.Files.CloseAll()
	err := v.Registry.Close()
	v.wg.Wait()

	v.jobsMu.Lock()
	v.cancel()
	v.jobsMu.Unlock()
	return err
}

// DeviceStrings returns one row per device for display.
func (v *VChar) DeviceStrings() []string {
	devices := v.Registry.Devices()
	res := make([]string, 0, len(devices))
	for _, d := range devices {
		info, err := d.Stats()
		if err != nil {
			continue
		}
		readers, writers := d.Waiters()
		res = append(res, fmt.Sprintf("my_char%d\t%d\t%d\t%d\t%d\t%d\n",
			d.Minor(), info.Capacity, info.Used, info.Free, readers, writers))
	}
	return res
}
