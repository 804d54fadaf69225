// Package pchar implements a fixed set of character devices, each backed
// by its own circular byte buffer, with blocking reads and writes and an
// ioctl-style control path for clearing, querying and resizing a buffer.
package pchar

import (
	"log/slog"
	"sync"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/circbuff"
	"github.com/pkg/errors"
)

const (
	// DefaultDevices is the number of devices created when none is configured.
	DefaultDevices = 3
	// DefaultCapacity is the initial buffer size of each device in bytes.
	DefaultCapacity = 32
)

var logger = slog.Default()

// SetLogger replaces the package logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Registry owns a fixed set of devices addressed by minor number
// 0..Count()-1. The set never changes after New returns.
type Registry struct {
	devices []*Device

	closeOnce sync.Once
}

type builder struct {
	count      int
	capacity   int
	limit      int
	capacities map[int]int
}

// Option configures a Registry.
type Option interface {
	applyOption(*builder)
}

// DeviceCapacity is an option that overrides the initial capacity of one device.
type DeviceCapacity struct {
	Minor    int
	Capacity int
}

// WithDeviceCapacity returns an option setting the initial capacity of a
// single device.
func WithDeviceCapacity(minor, capacity int) DeviceCapacity {
	return DeviceCapacity{minor, capacity}
}

func (o DeviceCapacity) applyOption(b *builder) {
	if b.capacities == nil {
		b.capacities = make(map[int]int)
	}
	b.capacities[o.Minor] = o.Capacity
}

// MaxCapacityOption limits how large any device buffer may grow.
type MaxCapacityOption int

// WithMaxCapacity returns an option capping the capacity of every device,
// initially and on resize. Zero means no cap.
func WithMaxCapacity(limit int) MaxCapacityOption {
	return MaxCapacityOption(limit)
}

func (o MaxCapacityOption) applyOption(b *builder) {
	b.limit = int(o)
}

// New creates count devices, each with a buffer of capacity bytes.
func New(count, capacity int, opts ...Option) (*Registry, error) {
	b := builder{count: count, capacity: capacity}
	for _, o := range opts {
		o.applyOption(&b)
	}
	return b.build()
}

func (b *builder) build() (r *Registry, err error) {
	if b.count <= 0 {
		return nil, errors.Wrapf(ErrConfig, "device count %d", b.count)
	}
	if err := circbuff.CheckCapacity(b.capacity); err != nil {
		return nil, errors.Wrapf(ErrConfig, "%v", err)
	}
	if b.limit < 0 {
		return nil, errors.Wrapf(ErrConfig, "capacity limit %d", b.limit)
	}
	for minor := range b.capacities {
		if minor < 0 || minor >= b.count {
			return nil, errors.Wrapf(ErrConfig, "capacity given for my_char%d of %d devices", minor, b.count)
		}
	}

	r = &Registry{devices: make([]*Device, 0, b.count)}
	defer func() {
		if err != nil {
			r.Close()
			r = nil
		}
	}()

	for minor := 0; minor < b.count; minor++ {
		capacity := b.capacity
		if c, ok := b.capacities[minor]; ok {
			capacity = c
		}
		if err := circbuff.CheckCapacity(capacity); err != nil {
			return r, errors.Wrapf(ErrConfig, "my_char%d: %v", minor, err)
		}
		if b.limit > 0 && capacity > b.limit {
			return r, errors.Wrapf(ErrConfig, "my_char%d capacity %d over limit %d", minor, capacity, b.limit)
		}
		r.devices = append(r.devices, newDevice(minor, capacity, b.limit))
	}
	logger.Info("devices created", "count", b.count, "capacity", b.capacity)
	return r, nil
}

// Count returns the number of devices.
func (r *Registry) Count() int {
	return len(r.devices)
}

// Device returns the device with the given minor number.
func (r *Registry) Device(minor int) (*Device, error) {
	if minor < 0 || minor >= len(r.devices) {
		return nil, errors.Wrapf(ErrNotFound, "my_char%d", minor)
	}
	return r.devices[minor], nil
}

// Devices returns every device in minor order.
func (r *Registry) Devices() []*Device {
	return append([]*Device(nil), r.devices...)
}

// Close tears down every device, waking suspended readers and writers
// with an interrupt before the buffers are dropped. Safe to call twice.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		for i := len(r.devices) - 1; i >= 0; i-- {
			r.devices[i].release()
		}
		logger.Info("devices released", "count", len(r.devices))
	})
	return nil
}
