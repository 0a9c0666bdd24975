// Package openvr binds the parts of the OpenVR C API that a headset snapshot
// needs: session lifecycle, the compositor mirror textures, the tracked
// camera, settings and string device properties.
//
// Interfaces are reached through their function tables
// (VR_GetGenericInterface("FnTable:<version>")), the same way the C API
// bindings do.
package openvr

import (
	"errors"
	"fmt"
	"strings"
)

// Interface versions of the function tables this package is laid out for.
const (
	IVRSystemVersion        = "IVRSystem_022"
	IVRCompositorVersion    = "IVRCompositor_027"
	IVRTrackedCameraVersion = "IVRTrackedCamera_006"
	IVRSettingsVersion      = "IVRSettings_003"
)

var (
	ErrUnsupported        = errors.New("openvr: not supported on this platform")
	ErrAlreadyInitialized = errors.New("openvr: a session is already active")
	ErrSessionClosed      = errors.New("openvr: session has been shut down")
)

// ApplicationType is the EVRApplicationType passed to Init.
type ApplicationType int32

const (
	ApplicationOther ApplicationType = iota
	ApplicationScene
	ApplicationOverlay
	ApplicationBackground
	ApplicationUtility
	ApplicationVRMonitor
	ApplicationSteamWatchdog
	ApplicationBootstrapper
)

// Eye is EVREye.
type Eye int32

const (
	EyeLeft Eye = iota
	EyeRight
)

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	}
	return fmt.Sprintf("eye(%d)", int32(e))
}

// FrameType selects the lens-correction variant of a camera frame.
type FrameType int32

const (
	FrameDistorted FrameType = iota
	FrameUndistorted
	FrameMaximumUndistorted
)

// FrameTypes lists every frame type the runtime supports.
var FrameTypes = []FrameType{FrameDistorted, FrameUndistorted, FrameMaximumUndistorted}

func (f FrameType) String() string {
	switch f {
	case FrameDistorted:
		return "distorted"
	case FrameUndistorted:
		return "undistorted"
	case FrameMaximumUndistorted:
		return "maximum-undistorted"
	}
	return fmt.Sprintf("frametype(%d)", int32(f))
}

func (f FrameType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFrameType accepts the names produced by FrameType.String.
func ParseFrameType(s string) (FrameType, error) {
	for _, f := range FrameTypes {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown frame type %q", s)
}

// TrackedDeviceIndex addresses a device known to the runtime.
type TrackedDeviceIndex uint32

// HMD is the tracked device index of the headset.
const HMD TrackedDeviceIndex = 0

// TrackedDeviceProperty is an ETrackedDeviceProperty.
type TrackedDeviceProperty int32

const (
	PropTrackingSystemNameString TrackedDeviceProperty = 1000
	PropModelNumberString        TrackedDeviceProperty = 1001
	PropSerialNumberString       TrackedDeviceProperty = 1002
	PropManufacturerNameString   TrackedDeviceProperty = 1005
)

// CameraHandle identifies an acquired video streaming service.
type CameraHandle uint64

// FrameSize is the geometry and buffer size of one camera frame type.
type FrameSize struct {
	Width           uint32 `yaml:"width"`
	Height          uint32 `yaml:"height"`
	FrameBufferSize uint32 `yaml:"frame_buffer_size"`
}

type Vector2 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

type Vector3 [3]float32

type Matrix34 [3][4]float32

type Matrix44 [4][4]float32

// Intrinsics are camera intrinsics in pixels.
type Intrinsics struct {
	FocalLength Vector2 `yaml:"focal_length"`
	Center      Vector2 `yaml:"center"`
}

// TrackedDevicePose matches TrackedDevicePose_t.
type TrackedDevicePose struct {
	DeviceToAbsoluteTracking Matrix34 `yaml:"device_to_absolute_tracking"`
	Velocity                 Vector3  `yaml:"velocity"`
	AngularVelocity          Vector3  `yaml:"angular_velocity"`
	TrackingResult           int32    `yaml:"tracking_result"`
	PoseIsValid              bool     `yaml:"pose_is_valid"`
	DeviceIsConnected        bool     `yaml:"device_is_connected"`
}

// FrameHeader matches CameraVideoStreamFrameHeader_t.
type FrameHeader struct {
	FrameType                 FrameType         `yaml:"frame_type"`
	Width                     uint32            `yaml:"width"`
	Height                    uint32            `yaml:"height"`
	BytesPerPixel             uint32            `yaml:"bytes_per_pixel"`
	FrameSequence             uint32            `yaml:"frame_sequence"`
	StandingTrackedDevicePose TrackedDevicePose `yaml:"standing_tracked_device_pose"`
	FrameExposureTime         uint64            `yaml:"frame_exposure_time"`
}
