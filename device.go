package vrcapture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kevmo314/go-vrcapture/pkg/gpu"
	"github.com/kevmo314/go-vrcapture/pkg/logger"
)

// DeviceContext owns a D3D11 device and its immediate context. All access
// goes through WithDevice and WithContext, which share one lock.
type DeviceContext struct {
	mu        sync.Mutex
	device    gpu.Device
	context   gpu.Context
	borrowers int
	closed    bool
}

// NewDeviceContext creates the device with create, usually
// gpu.CreateHardwareDevice.
func NewDeviceContext(create gpu.DeviceFactory) (*DeviceContext, error) {
	device, context, err := create()
	if err != nil {
		return nil, &InitializationError{Component: "d3d11 device", Err: err}
	}
	if device == nil || context == nil {
		if context != nil {
			context.Release()
		}
		if device != nil {
			device.Release()
		}
		return nil, &InitializationError{Component: "d3d11 device", Err: errors.New("driver returned no device or context")}
	}
	logger.WithComponent("device").Debug().Msg("d3d11 device created")
	return &DeviceContext{device: device, context: context}, nil
}

func (d *DeviceContext) do(fn func(gpu.Device, gpu.Context) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	return fn(d.device, d.context)
}

// WithDevice runs fn with exclusive access to the device.
func WithDevice[R any](d *DeviceContext, fn func(gpu.Device) (R, error)) (R, error) {
	var r R
	err := d.do(func(device gpu.Device, _ gpu.Context) error {
		var err error
		r, err = fn(device)
		return err
	})
	return r, err
}

// WithContext runs fn with exclusive access to the immediate context.
func WithContext[R any](d *DeviceContext, fn func(gpu.Context) (R, error)) (R, error) {
	var r R
	err := d.do(func(_ gpu.Device, context gpu.Context) error {
		var err error
		r, err = fn(context)
		return err
	})
	return r, err
}

func (d *DeviceContext) borrow() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	d.borrowers++
	return nil
}

func (d *DeviceContext) unborrow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.borrowers--
}

// Close releases the context and then the device. It fails with
// ErrDeviceInUse while mirror textures are still open.
func (d *DeviceContext) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	if d.borrowers > 0 {
		return fmt.Errorf("%w (%d open)", ErrDeviceInUse, d.borrowers)
	}
	d.context.Release()
	d.device.Release()
	d.context, d.device = nil, nil
	d.closed = true
	logger.WithComponent("device").Debug().Msg("d3d11 device released")
	return nil
}
