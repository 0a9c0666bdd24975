package vrcapture

import (
	"errors"
	"fmt"
	"time"

	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

var (
	ErrDeviceClosed = errors.New("device context is closed")
	ErrDeviceInUse  = errors.New("device context still has mirror textures attached")
	ErrMirrorClosed = errors.New("mirror texture is closed")
)

// InitializationError is returned when a native component could not be
// brought up. For the D3D11 device Err is a *gpu.Error carrying the HRESULT.
type InitializationError struct {
	Component string
	Err       error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

type StagingResourceError struct {
	Eye openvr.Eye
	Op  string
	Err error
}

func (e *StagingResourceError) Error() string {
	return fmt.Sprintf("%s eye mirror: %s: %v", e.Eye, e.Op, e.Err)
}

func (e *StagingResourceError) Unwrap() error { return e.Err }

type CameraServiceError struct {
	Op  string
	Err error
}

func (e *CameraServiceError) Error() string {
	return fmt.Sprintf("tracked camera: %s: %v", e.Op, e.Err)
}

func (e *CameraServiceError) Unwrap() error { return e.Err }

// CaptureTimeoutError means the streaming service never produced a frame
// before the polling deadline. Last is the final transient status.
type CaptureTimeoutError struct {
	Attempts int
	Elapsed  time.Duration
	Last     error
}

func (e *CaptureTimeoutError) Error() string {
	return fmt.Sprintf("no camera frame after %d attempts in %s: %v", e.Attempts, e.Elapsed, e.Last)
}

func (e *CaptureTimeoutError) Unwrap() error { return e.Last }
