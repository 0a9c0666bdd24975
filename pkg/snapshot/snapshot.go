// Package snapshot drives a complete headset capture: camera settings,
// calibration metadata, both mirror eyes and one passthrough camera frame.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	vrcapture "github.com/kevmo314/go-vrcapture"
	"github.com/kevmo314/go-vrcapture/pkg/config"
	"github.com/kevmo314/go-vrcapture/pkg/logger"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
	"github.com/kevmo314/go-vrcapture/pkg/steam"
)

var ErrNoCamera = errors.New("headset has no tracked camera")

// Camera is the tracked camera as used by a capture run.
type Camera interface {
	vrcapture.StreamSource
	HasCamera(dev openvr.TrackedDeviceIndex) (bool, error)
	CameraIntrinsics(dev openvr.TrackedDeviceIndex, camera uint32, ft openvr.FrameType) (openvr.Intrinsics, error)
	CameraProjection(dev openvr.TrackedDeviceIndex, camera uint32, ft openvr.FrameType, near, far float32) (openvr.Matrix44, error)
}

type Settings interface {
	Bool(section, key string) (bool, error)
	SetBool(section, key string, value bool) error
	Int32(section, key string) (int32, error)
	SetInt32(section, key string, value int32) error
}

type System interface {
	StringProperty(dev openvr.TrackedDeviceIndex, prop openvr.TrackedDeviceProperty) (string, error)
}

// Snapshot is everything a single run collected.
type Snapshot struct {
	ID    uuid.UUID
	Taken time.Time

	CameraImage *image.RGBA
	MirrorImage *image.RGBA
	Header      openvr.FrameHeader
	FrameSize   openvr.FrameSize
	Intrinsics  []IntrinsicsEntry

	Serial            string
	CalibrationConfig string
	CalibrationPath   string
	CalibrationFound  bool
}

// Runner holds the live components of a capture. Calibration, Log, Sleep,
// Clock and Now are optional.
type Runner struct {
	Config     *config.Config
	Device     *vrcapture.DeviceContext
	Compositor vrcapture.MirrorSource
	Camera     Camera
	Settings   Settings
	System     System

	// Calibration resolves the lighthouse calibration for a serial number.
	Calibration func(serial string) steam.Calibration
	Log         *zerolog.Logger
	Sleep       func(ctx context.Context, d time.Duration) error
	Clock       vrcapture.Clock
	Now         func() time.Time
}

func (r *Runner) log() *zerolog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logger.WithComponent("snapshot")
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) calibration(serial string) steam.Calibration {
	if r.Calibration != nil {
		return r.Calibration(serial)
	}
	root := r.Config.Steam.InstallPath
	if root == "" {
		root = steam.InstallPath()
	}
	return steam.LoadCalibration(root, serial)
}

// Run performs one capture. Mirror textures are released before it
// returns, whatever the outcome.
func (r *Runner) Run(ctx context.Context) (*Snapshot, error) {
	log := r.log()
	cfg := r.Config

	ft, err := cfg.FrameType()
	if err != nil {
		return nil, err
	}

	has, err := r.Camera.HasCamera(openvr.HMD)
	if err != nil {
		return nil, fmt.Errorf("checking for camera: %w", err)
	}
	if !has {
		return nil, ErrNoCamera
	}

	if cfg.Camera.EnforceSettings {
		if err := EnforceCameraSettings(r.Settings, cfg.Camera, log); err != nil {
			return nil, err
		}
	}

	serial, err := r.System.StringProperty(openvr.HMD, openvr.PropSerialNumberString)
	if err != nil {
		return nil, fmt.Errorf("reading headset serial: %w", err)
	}
	cal := r.calibration(serial)
	log.Info().Str("serial", serial).Bool("calibration", cal.Found).Msg("headset identified")

	intrinsics := CollectIntrinsics(r.Camera, cfg.Camera.NearZ, cfg.Camera.FarZ)

	left, err := vrcapture.AcquireMirrorTexture(r.Compositor, openvr.EyeLeft, r.Device)
	if err != nil {
		return nil, err
	}
	defer left.Close()
	right, err := vrcapture.AcquireMirrorTexture(r.Compositor, openvr.EyeRight, r.Device)
	if err != nil {
		return nil, err
	}
	defer right.Close()

	log.Debug().Dur("duration", cfg.Capture.WarmUp).Msg("warming up")
	if err := r.sleep(ctx, cfg.Capture.WarmUp); err != nil {
		return nil, err
	}

	stream := vrcapture.NewStreamCapture(r.Camera, vrcapture.StreamOptions{
		Device:    openvr.HMD,
		FrameType: ft,
		Interval:  cfg.Capture.PollInterval,
		Deadline:  cfg.Capture.PollDeadline,
		Clock:     r.Clock,
	})
	frame, err := stream.Capture(ctx)
	if err != nil {
		return nil, err
	}
	cameraImage, err := frame.Image()
	if err != nil {
		return nil, fmt.Errorf("decoding camera frame: %w", err)
	}

	leftImage, err := left.Capture()
	if err != nil {
		return nil, err
	}
	rightImage, err := right.Capture()
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ID:                uuid.New(),
		Taken:             r.now(),
		CameraImage:       cameraImage,
		MirrorImage:       vrcapture.ComposeSideBySide(leftImage, rightImage),
		Header:            frame.Header,
		FrameSize:         frame.Size,
		Intrinsics:        intrinsics,
		Serial:            serial,
		CalibrationConfig: cal.Text,
		CalibrationPath:   cal.Path,
		CalibrationFound:  cal.Found,
	}, nil
}
