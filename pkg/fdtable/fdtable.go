// Package fdtable hands out small integer descriptors for open device files.
package fdtable

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pchar"
	deque "github.com/gammazero/deque"
	"github.com/pkg/errors"
)

var ErrBadFD = errors.New("bad file descriptor")

type Table struct {
	files map[int]*pchar.File
	free  *deque.Deque[int] // released descriptors, reused oldest first
	next  int               // next never-used descriptor
	mu    sync.RWMutex
}

func New() *Table {
	return &Table{
		files: make(map[int]*pchar.File),
		free:  deque.New[int](),
	}
}

// Insert stores f and returns its descriptor.
func (t *Table) Insert(f *pchar.File) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fd int
	if t.free.Len() > 0 {
		fd = t.free.PopFront()
	} else {
		fd = t.next
		t.next++
	}
	t.files[fd] = f
	return fd
}

func (t *Table) Get(fd int) (*pchar.File, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	f, ok := t.files[fd]
	if !ok {
		return nil, errors.Wrapf(ErrBadFD, "fd %d", fd)
	}
	return f, nil
}

// Remove drops fd from the table and returns the file it referred to.
// The descriptor becomes available for reuse.
func (t *Table) Remove(fd int) (*pchar.File, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[fd]
	if !ok {
		return nil, errors.Wrapf(ErrBadFD, "fd %d", fd)
	}
	delete(t.files, fd)
	t.free.PushBack(fd)
	return f, nil
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// Descriptors returns the open descriptors in ascending order.
func (t *Table) Descriptors() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	fds := make([]int, 0, len(t.files))
	for fd := range t.files {
		fds = append(fds, fd)
	}
	sort.Ints(fds)
	return fds
}

// Strings returns one tab-separated row per open descriptor.
func (t *Table) Strings() []string {
	fds := t.Descriptors()
	res := make([]string, 0, len(fds))
	for _, fd := range fds {
		f, err := t.Get(fd)
		if err != nil {
			continue
		}
		mode := "block"
		if f.Flags()&pchar.ONonblock != 0 {
			mode = "nonblock"
		}
		res = append(res, fmt.Sprintf("%d\tmy_char%d\t%s\n", fd, f.Minor(), mode))
	}
	return res
}

// CloseAll closes every file still in the table and empties it.
func (t *Table) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for fd, f := range t.files {
		f.Close()
		delete(t.files, fd)
	}
	t.free.Clear()
	t.next = 0
}
