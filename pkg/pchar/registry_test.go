package pchar_test

import (
	"context"
	"testing"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pchar"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNew(t *testing.T) {
	r := newRegistry(t, 3, 8)
	require.Equal(t, 3, r.Count())
	for i, d := range r.Devices() {
		assert.Equal(t, i, d.Minor())
		assert.Equal(t, pchar.Info{Capacity: 8, Used: 0, Free: 8}, must(d.Stats()))
	}

	r = newRegistry(t, 2, 8, pchar.WithDeviceCapacity(1, 100))
	d, err := r.Device(1)
	require.NoError(t, err)
	assert.Equal(t, 100, must(d.Stats()).Capacity)
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		count    int
		capacity int
		opts     []pchar.Option
	}{
		{"no devices", 0, 8, nil},
		{"negative devices", -1, 8, nil},
		{"zero capacity", 3, 0, nil},
		{"negative capacity", 3, -8, nil},
		{"override out of range", 3, 8, []pchar.Option{pchar.WithDeviceCapacity(3, 8)}},
		{"bad override", 3, 8, []pchar.Option{pchar.WithDeviceCapacity(2, 0)}},
		{"over limit", 3, 128, []pchar.Option{pchar.WithMaxCapacity(64)}},
		{"negative limit", 3, 8, []pchar.Option{pchar.WithMaxCapacity(-1)}},
		{"huge capacity", 1, 1 << 62, nil},
		{"huge override", 2, 8, []pchar.Option{pchar.WithDeviceCapacity(1, 1<<62)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				r   *pchar.Registry
				err error
			)
			require.NotPanics(t, func() { r, err = pchar.New(tc.count, tc.capacity, tc.opts...) })
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, pchar.ErrConfig), "got %v", err)
			assert.Equal(t, unix.EINVAL, pchar.Errno(err))
		})
	}
}

func TestRegistry_Device(t *testing.T) {
	r := newRegistry(t, 3, 8)
	for _, minor := range []int{-1, 3, 42} {
		d, err := r.Device(minor)
		assert.Nil(t, d)
		assert.True(t, errors.Is(err, pchar.ErrNotFound))
	}
}

func TestRegistry_Open(t *testing.T) {
	r := newRegistry(t, 3, 8)

	f, err := r.Open(3, 0)
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, pchar.ErrNotFound))
	assert.Equal(t, unix.ENODEV, pchar.Errno(err))

	f, err = r.Open(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Minor())
}

// 3 devices of 8 bytes: fill my_char0, grow it and read everything back.
func TestRegistry_Scenario(t *testing.T) {
	r := newRegistry(t, 3, 8)
	ctx := context.Background()

	f, err := r.Open(0, 0)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write(ctx, []byte("ABCDEFGH"))
	require.NoError(t, err)
	require.Equal(t, 8, n)

	info, err := f.Ioctl(pchar.CmdInfo, 0)
	require.NoError(t, err)
	assert.Equal(t, pchar.Info{Capacity: 8, Used: 8, Free: 0}, info)

	info, err = f.Ioctl(pchar.CmdResize, 16)
	require.NoError(t, err)
	assert.Equal(t, pchar.Info{Capacity: 16, Used: 8, Free: 8}, info)

	buf := make([]byte, 8)
	n, err = f.Read(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGH", string(buf[:n]))

	// the other devices were untouched
	for minor := 1; minor < 3; minor++ {
		d, _ := r.Device(minor)
		assert.Equal(t, pchar.Info{Capacity: 8, Used: 0, Free: 8}, must(d.Stats()))
	}
}

func TestRegistry_CloseWakesWaiters(t *testing.T) {
	r, err := pchar.New(2, 1)
	require.NoError(t, err)
	ctx := context.Background()

	rd, _ := r.Device(0)
	wd, _ := r.Device(1)
	wd.Write(ctx, []byte("x"))

	done := make(chan error, 2)
	go func() {
		_, err := rd.Read(ctx, make([]byte, 1))
		done <- err
	}()
	go func() {
		_, err := wd.Write(ctx, []byte("y"))
		done <- err
	}()
	waitForWaiters(t, rd, 1, 0)
	waitForWaiters(t, wd, 0, 1)

	require.NoError(t, r.Close())
	for i := 0; i < 2; i++ {
		err := <-done
		assert.True(t, errors.Is(err, pchar.ErrInterrupted), "got %v", err)
		assert.True(t, errors.Is(err, pchar.ErrClosed))
		assert.Equal(t, unix.EINTR, pchar.Errno(err))
	}

	// everything after teardown fails without blocking
	_, err = rd.Read(ctx, make([]byte, 1))
	assert.True(t, errors.Is(err, pchar.ErrClosed))
	assert.False(t, errors.Is(err, pchar.ErrInterrupted))
	_, err = wd.Stats()
	assert.True(t, errors.Is(err, pchar.ErrClosed))
	_, err = wd.Resize(4)
	assert.True(t, errors.Is(err, pchar.ErrClosed))
	_, err = wd.Clear()
	assert.True(t, errors.Is(err, pchar.ErrClosed))

	assert.NoError(t, r.Close())
}
